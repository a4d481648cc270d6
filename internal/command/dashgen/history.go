package dashgen

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "显示最近的生成记录",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "显示条数，0 表示全部",
			},
		},
		Action: historyAction,
	}
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	store, err := e.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("history is disabled (history.enabled = false)")
	}
	defer func() { _ = store.Close() }()

	entries, err := store.List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		e.printf("No generations recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GENERATED AT\tTEMPLATE\tVERSION\tDASHBOARD")
	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.GeneratedAt.Local().Format(time.DateTime), entry.Template, entry.Version, entry.DashboardPath)
	}

	return w.Flush()
}
