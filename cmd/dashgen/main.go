package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/lwmacct/251219-go-pkg-logm/pkg/logm"

	app "github.com/lwmacct/261016-go-pkg-dashgen/internal/command/dashgen"
)

func main() {
	_ = logm.Init(logm.PresetAuto()...)
	if err := app.Command.Run(context.Background(), os.Args); err != nil {
		slog.Error("dashgen 运行失败", "error", err)
		os.Exit(1)
	}
}
