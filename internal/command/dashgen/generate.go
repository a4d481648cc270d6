package dashgen

import (
	"context"
	"errors"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/internal/command"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "由模板生成仪表盘与元数据文件",
		ArgsUsage: "NAME",
		Flags: append(paramFlags(),
			&cli.StringFlag{
				Name:    "output-environment",
				Aliases: []string{"environment", "e"},
				Value:   command.Defaults.Output.Environment,
				Usage:   "目标环境，同时作为 ENV_NAME 参数",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Value:   command.Defaults.Output.Dir,
				Usage:   "输出目录，指定后忽略环境目录",
			},
			&cli.StringFlag{
				Name:  "output-environments-dir",
				Value: command.Defaults.Output.EnvironmentsDir,
				Usage: "环境目录根路径",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "只渲染并显示结果摘要，不写文件",
			},
		),
		Action: generateAction,
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return errors.New("template name required, see 'dashgen list'")
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}

	params, err := collectParams(cmd)
	if err != nil {
		return err
	}
	environment := e.cfg.Output.Environment
	if _, ok := params["ENV_NAME"]; !ok && environment != "" {
		params["ENV_NAME"] = environment
	}

	outDir := e.cfg.Output.Dir
	if !cmd.IsSet("output-dir") {
		outDir = dashboard.OutputDir(e.cfg.Output.Dir, e.cfg.Output.EnvironmentsDir, environment)
	}

	opts := []dashboard.GeneratorOption{dashboard.WithPreviewBytes(e.cfg.Validate.PreviewBytes)}
	if !cmd.Bool("dry-run") {
		store, err := e.openHistory()
		if err != nil {
			slog.Warn("History disabled for this run", "error", err)
		}
		if store != nil {
			defer func() { _ = store.Close() }()
			opts = append(opts, dashboard.WithRecorder(store))
		}
	}
	g := dashboard.NewGenerator(e.catalog, opts...)

	if cmd.Bool("dry-run") {
		out, err := g.Build(name, params)
		if err != nil {
			return err
		}
		e.printf("Template:   %s (%s)\n", name, out.Template.Info.Title)
		e.printf("Output:     %s/%s.json\n", outDir, out.Filename)
		e.printf("Parameters:\n")
		for _, param := range out.Template.ParamNames() {
			e.printf("  %s = %v\n", param, out.Params[param])
		}
		e.printf("Size:       %d bytes\n", len(out.Dashboard))
		e.printf("Preview:    %s\n", dashboard.Preview(string(out.Dashboard), e.cfg.Validate.PreviewBytes))
		return nil
	}

	res, err := g.Generate(ctx, name, params, outDir)
	if err != nil {
		return err
	}
	e.printf("Dashboard: %s\n", res.DashboardPath)
	e.printf("Metadata:  %s\n", res.MetadataPath)

	return nil
}
