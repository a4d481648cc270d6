package dashgen

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/internal/command"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/validate"
)

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "校验模板，未指定名称时校验全部",
		ArgsUsage: "[NAME...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "validate-strict",
				Aliases: []string{"strict"},
				Value:   command.Defaults.Validate.Strict,
				Usage:   "启用性能与安全检查",
			},
		},
		Action: validateAction,
	}
}

// validateAction 逐个校验，单个模板失败不影响其余模板；存在错误时返回非 nil
func validateAction(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	names := cmd.Args().Slice()
	if len(names) == 0 {
		if names, err = e.catalog.Names(); err != nil {
			return err
		}
	}
	if len(names) == 0 {
		e.printf("No templates found in %s\n", e.catalog.Dir())
		return nil
	}

	failed := 0
	for _, name := range names {
		t, err := e.catalog.Open(name)
		if err != nil {
			e.printReport(name, validate.Report{Errors: []string{err.Error()}})
			failed++
			continue
		}
		report := validate.Template(e.engine, t, e.policy())
		e.printReport(name, report)
		if !report.OK() {
			failed++
		}
	}

	e.printf("\n%d/%d templates valid\n", len(names)-failed, len(names))
	if failed > 0 {
		return fmt.Errorf("%w: %d template(s) with errors", dashboard.ErrValidation, failed)
	}

	return nil
}

func (e *env) printReport(name string, r validate.Report) {
	mark := "✓"
	if !r.OK() {
		mark = "✗"
	}
	e.printf("%s %s", mark, name)
	if r.RenderTime > 0 {
		e.printf(" (%d bytes, %s)", r.Size, r.RenderTime.Round(time.Microsecond))
	}
	e.printf("\n")
	for _, msg := range r.Errors {
		e.printf("    error: %s\n", msg)
	}
	for _, msg := range r.Warnings {
		e.printf("    warning: %s\n", msg)
	}
}
