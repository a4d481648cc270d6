package dashgen

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/261016-go-pkg-dashgen/internal/command"
	"github.com/lwmacct/261016-go-pkg-dashgen/pkg/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "配置相关操作",
		Commands: []*cli.Command{
			{
				Name:  "example",
				Usage: "输出带注释的示例配置",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					_, err := cmd.Root().Writer.Write(config.ExampleYAML(command.Defaults))
					return err
				},
			},
			{
				Name:  "show",
				Usage: "输出合并后的生效配置",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "以 JSON 输出"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}

					data := config.MarshalYAML(*e.cfg)
					if cmd.Bool("json") {
						data = config.MarshalJSON(*e.cfg)
					}
					_, err = e.out.Write(data)
					return err
				},
			},
		},
	}
}
