package dashgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
)

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "以默认上下文和给定参数渲染任意模板文件并输出",
		ArgsUsage: "FILE",
		Flags: append(paramFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "要求结果为合法 JSON 并格式化输出",
			},
		),
		Action: renderAction,
	}
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("template file required")
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	params, err := collectParams(cmd)
	if err != nil {
		return err
	}
	data := dashboard.DefaultContext()
	maps.Copy(data, params)

	rendered, err := e.engine.Render(string(text), data)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}

	if cmd.Bool("json") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(rendered), "", "  "); err != nil {
			return fmt.Errorf("%w: %v (output: %s)", dashboard.ErrInvalidOutput, err,
				dashboard.Preview(rendered, e.cfg.Validate.PreviewBytes))
		}
		rendered = buf.String() + "\n"
	}

	_, err = fmt.Fprint(e.out, rendered)
	return err
}
