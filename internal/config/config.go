// Package config 提供 dashgen 的应用配置。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig()
//  2. 配置文件 - config.yaml、config/config.yaml、.dashgen.yaml、~/.dashgen.yaml、/etc/dashgen/config.yaml
//  3. 环境变量 - DASHGEN_ 前缀，如 DASHGEN_OUTPUT_DIR
//  4. 环境变量绑定 - 配置文件 envbind 段
//  5. CLI flags
package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/config"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "DASHGEN_"

// Config 应用配置
type Config struct {
	Templates TemplatesConfig `koanf:"templates" desc:"模板配置"`
	Output    OutputConfig    `koanf:"output"    desc:"输出配置"`
	Render    RenderConfig    `koanf:"render"    desc:"渲染配置"`
	Validate  ValidateConfig  `koanf:"validate"  desc:"校验配置"`
	History   HistoryConfig   `koanf:"history"   desc:"生成记录配置"`
}

// TemplatesConfig 模板目录配置
type TemplatesConfig struct {
	Dir string `koanf:"dir" desc:"仪表盘模板目录"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir             string `koanf:"dir"              desc:"默认输出目录"`
	EnvironmentsDir string `koanf:"environments_dir" desc:"环境目录根路径，<dir>/<env> 存在时输出到其 dashboards/generated"`
	Environment     string `koanf:"environment"      desc:"目标环境名称，同时作为 ENV_NAME 传给模板"`
}

// RenderConfig 模板引擎配置
type RenderConfig struct {
	MaxDepth int  `koanf:"max_depth" desc:"块嵌套深度上限"`
	Strict   bool `koanf:"strict"    desc:"缺失变量或未知过滤器时报错"`
}

// ValidateConfig 校验策略
type ValidateConfig struct {
	Strict         bool          `koanf:"strict"           desc:"启用性能与安全检查"`
	MaxOutputBytes int           `koanf:"max_output_bytes" desc:"严格模式下的输出大小警告阈值"`
	SlowRender     time.Duration `koanf:"slow_render"      desc:"渲染耗时警告阈值"`
	PreviewBytes   int           `koanf:"preview_bytes"    desc:"错误信息中渲染结果的预览长度"`
}

// HistoryConfig 生成记录配置
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled" desc:"是否记录生成历史"`
	DSN     string `koanf:"dsn"     desc:"SQLite 数据库路径"`
}

// DefaultConfig 返回默认配置
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Templates: TemplatesConfig{
			Dir: "templates/dashboard-templates",
		},
		Output: OutputConfig{
			Dir:             "dashboards/generated",
			EnvironmentsDir: "environments",
		},
		Render: RenderConfig{
			MaxDepth: 64,
		},
		Validate: ValidateConfig{
			MaxOutputBytes: 100000,
			SlowRender:     time.Second,
			PreviewBytes:   200,
		},
		History: HistoryConfig{
			Enabled: true,
			DSN:     ".dashgen/history.db",
		},
	}
}

// Load 按优先级加载配置
func Load(cmd *cli.Command, appName string, opts ...config.Option) (*Config, error) {
	return config.Load(
		DefaultConfig(),
		append([]config.Option{
			config.WithCommand(cmd),
			config.WithConfigPaths(config.DefaultPaths(appName)...),
			config.WithEnvPrefix(EnvPrefix),
			config.WithEnvBindKey("envbind"),
		}, opts...)...,
	)
}
