// Package config 提供基于 koanf 的泛型分层配置加载。
//
// # 优先级
//
// 从低到高依次合并：
//  1. 默认值 - Load 的 defaultConfig 参数
//  2. 配置文件 - [WithConfigPaths]，第一个存在的文件生效，按扩展名选择 JSON 或 YAML 解析
//  3. 环境变量(前缀) - [WithEnvPrefix]
//  4. 环境变量(绑定) - [WithEnvBindKey] (配置文件) 低于 [WithEnvBinding] / [WithEnvBindings] (代码)
//  5. CLI flags - [WithCommand]，只应用用户明确设置的 flag
//
// # 使用
//
//	type Config struct {
//	    Dir    string `koanf:"dir"    desc:"模板目录"`
//	    Strict bool   `koanf:"strict" desc:"严格模式"`
//	}
//
//	cfg, err := config.Load(Config{Dir: "templates"},
//	    config.WithConfigPaths(config.DefaultPaths("dashgen")...),
//	    config.WithEnvPrefix("DASHGEN_"),
//	    config.WithEnvBindKey("envbind"),
//	    config.WithCommand(cmd),
//	)
//
// # 环境变量
//
// 前缀变量名为前缀加大写 key，. 和 - 都写作 _，例如 DASHGEN_RENDER_MAX_DEPTH → render.max_depth。
// map 类型字段可以直接用子键扩展：DASHGEN_LABELS_TEAM → labels.team。
//
// 与前缀无关的变量通过绑定映射：
//
//	# config.yaml
//	envbind:
//	  SIEM_ENVIRONMENT: output.environment
//
// # CLI flags
//
// koanf key 中的 . 转为 -，依次尝试 --output-dir、--render-max-depth 与原始的 --render.max_depth。
//
// # 示例文件
//
// [ExampleYAML] 根据 desc 标签生成带注释的示例配置，[ConfigTestHelper] 在测试中维护它。
package config
