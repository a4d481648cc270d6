// Package tmpl 提供仪表盘 JSON 模板的渲染引擎。
//
// 语法与 Handlebars 的子集对齐，面向"模板本身就是 JSON"的场景：
// 只识别 {{...}} 占位符，模板中的 JSON 花括号原样保留。
//
// # 语法
//
//   - {{path}}                     变量，支持点号路径 {{user.name}}
//   - {{path|filter}}              过滤器：title、upper、lower、length、json
//   - {{path|replace 'old' 'new'}} 字面替换，第二个参数可省略
//   - {{#each items}}...{{/each}}  迭代序列，块内可用 this、@index、@first、@last
//   - {{#if key}}...{{/if}}        条件为真时输出
//   - {{#unless key}}...{{/unless}} 条件为假时输出
//
// # 宽松语义
//
//   - 缺失的变量输出空字符串
//   - 未知过滤器输出原值
//   - 未配对的块标记原样输出
//   - false、0、""、nil、空序列、空映射视为假
//
// 需要更严格的校验时使用 [WithStrict]。嵌套层数由 [WithMaxDepth] 限制，
// 超出时返回 [ErrDepthExceeded]。
//
// 渲染结果是否为合法 JSON 由调用方校验，参见 pkg/validate。
package tmpl
