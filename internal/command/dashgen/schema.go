package dashgen

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/dashboard"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "输出模板文件的 JSON Schema",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metadata",
				Usage: "输出生成元数据文件的 JSON Schema",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var v any = &dashboard.File{}
			if cmd.Bool("metadata") {
				v = &dashboard.Metadata{}
			}

			data, err := dashboard.Schema(v)
			if err != nil {
				return err
			}
			_, err = cmd.Root().Writer.Write(append(data, '\n'))
			return err
		},
	}
}
