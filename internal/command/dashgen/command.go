// Package dashgen 提供 dashgen 命令行：列出、校验、渲染与生成仪表盘模板。
package dashgen

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/lwmacct/251207-go-pkg-version/pkg/version"
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/internal/command"
	"github.com/lwmacct/261016-go-pkg-dashgen/internal/config"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/history"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/tmpl"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/validate"
)

// Command 根命令
var Command = New()

// New 创建根命令。测试中每次调用得到独立的命令树。
func New() *cli.Command {
	return &cli.Command{
		Name:  "dashgen",
		Usage: "从参数化模板生成 Splunk Dashboard Studio 仪表盘",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "templates-dir",
				Aliases: []string{"t"},
				Value:   command.Defaults.Templates.Dir,
				Usage:   "仪表盘模板目录",
			},
			&cli.IntFlag{
				Name:  "render-max-depth",
				Value: command.Defaults.Render.MaxDepth,
				Usage: "块嵌套深度上限",
			},
			&cli.BoolFlag{
				Name:  "render-strict",
				Value: command.Defaults.Render.Strict,
				Usage: "缺失变量或未知过滤器时报错",
			},
			&cli.BoolFlag{
				Name:  "history-enabled",
				Value: command.Defaults.History.Enabled,
				Usage: "记录生成历史",
			},
			&cli.StringFlag{
				Name:  "history-dsn",
				Value: command.Defaults.History.DSN,
				Usage: "生成历史 SQLite 数据库路径",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			listCommand(),
			generateCommand(),
			validateCommand(),
			renderCommand(),
			watchCommand(),
			historyCommand(),
			schemaCommand(),
			configCommand(),
			version.Command,
		},

		// --set 的值自身可含逗号 (数组参数)
		DisableSliceFlagSeparator: true,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 运行环境
// ═══════════════════════════════════════════════════════════════════════════

// env 单次命令执行所需的配置与组件
type env struct {
	cfg     *config.Config
	engine  *tmpl.Engine
	catalog *dashboard.Catalog
	out     io.Writer
}

// setup 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
func setup(cmd *cli.Command) (*env, error) {
	cfg, err := config.Load(cmd, version.GetAppRawName())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	engine := tmpl.New(tmpl.WithMaxDepth(cfg.Render.MaxDepth), tmpl.WithStrict(cfg.Render.Strict))

	return &env{
		cfg:     cfg,
		engine:  engine,
		catalog: dashboard.NewCatalog(cfg.Templates.Dir, engine),
		out:     cmd.Root().Writer,
	}, nil
}

func (e *env) policy() validate.Policy {
	return validate.Policy{
		Strict:         e.cfg.Validate.Strict,
		MaxOutputBytes: e.cfg.Validate.MaxOutputBytes,
		SlowRender:     e.cfg.Validate.SlowRender,
		PreviewBytes:   e.cfg.Validate.PreviewBytes,
	}
}

// openHistory 未启用历史记录时返回 nil
func (e *env) openHistory() (*history.Store, error) {
	if !e.cfg.History.Enabled {
		return nil, nil
	}

	return history.Open(e.cfg.History.DSN)
}

func (e *env) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}

// ═══════════════════════════════════════════════════════════════════════════
// 参数
// ═══════════════════════════════════════════════════════════════════════════

func paramFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "params",
			Aliases: []string{"p"},
			Usage:   "参数文件 (.json / .yaml / .toml)",
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "单个参数 key=value，可重复；值以 [ 或 { 开头时按 JSON 解析",
		},
	}
}

// collectParams 合并参数文件与 --set，后者优先
func collectParams(cmd *cli.Command) (map[string]any, error) {
	params := make(map[string]any)
	if path := cmd.String("params"); path != "" {
		loaded, err := dashboard.LoadParams(path)
		if err != nil {
			return nil, err
		}
		maps.Copy(params, loaded)
	}

	sets, err := dashboard.ParseAssignments(cmd.StringSlice("set"))
	if err != nil {
		return nil, err
	}
	maps.Copy(params, sets)

	return params, nil
}
