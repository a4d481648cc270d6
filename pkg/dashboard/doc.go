// Package dashboard 管理 Splunk Dashboard Studio 仪表盘模板：发现、解析、参数补全与生成。
//
// 模板文件有两种形式：
//   - 纯 JSON (*.json)：包含 template_info、parameters、dashboard 三段，
//     生成时只渲染 dashboard 段
//   - handlebars (*.json.hbs / *.hbs)：整份文件是模板，渲染后再取 dashboard 段
//
// 生成结果以原子方式写入 <title>.json 与 <title>_metadata.json。
package dashboard
