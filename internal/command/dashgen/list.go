package dashgen

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "列出可用模板",
		Action: listAction,
	}
}

// listAction 单个模板解析失败时在表格中显示错误，不中断列表
func listAction(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	names, err := e.catalog.Names()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		e.printf("No templates found in %s\n", e.catalog.Dir())
		return nil
	}

	w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tCATEGORY\tDESCRIPTION")
	for _, name := range names {
		t, err := e.catalog.Open(name)
		if err != nil {
			_, _ = fmt.Fprintf(w, "%s\t<error>\t\t%v\n", name, err)
			continue
		}
		category := t.Info.Category
		if category == "" {
			category = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, t.Info.Title, category, t.Info.Description)
	}

	return w.Flush()
}
