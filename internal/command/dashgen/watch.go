package dashgen

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/validate"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:   "watch",
		Usage:  "监视模板目录，文件变化时重新校验",
		Action: watchAction,
	}
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.printf("Watching %s (Ctrl+C to stop)\n", e.catalog.Dir())

	return dashboard.Watch(ctx, e.catalog.Dir(), e.revalidate)
}

// revalidate 校验单个变化的模板文件，结果直接输出
func (e *env) revalidate(path string) {
	name := dashboard.TemplateName(filepath.Base(path))
	t, err := e.catalog.ParseFile(path)
	if err != nil {
		e.printReport(name, validate.Report{Errors: []string{err.Error()}})
		return
	}

	e.printReport(name, validate.Template(e.engine, t, e.policy()))
}
