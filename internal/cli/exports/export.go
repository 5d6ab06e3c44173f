package exports

import (
	"fmt"
	"io"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/export"
	"github.com/julianstephens/habitcycle/internal/stats"
)

type ExportCmd struct {
	CSV  ExportCSVCmd  `cmd:"" name:"csv" help:"Export records or cycle histories as CSV."`
	JSON ExportJSONCmd `cmd:"" name:"json" help:"Export habits with records and histories as JSON."`
}

type ExportCSVCmd struct {
	Kind   string `help:"What to export: records or histories." enum:"records,histories" default:"records"`
	Habit  string `help:"Only export this habit (ID, ID prefix or title)."`
	Output string `short:"o" help:"Output file. Defaults to stdout." default:"-"`
}

func (c *ExportCSVCmd) Run(ctx *cli.Context) error {
	doc, err := collect(ctx, c.Habit)
	if err != nil {
		return err
	}
	return export.ToFile(c.Output, ctx.Stdout(), func(w io.Writer) error {
		return export.WriteCSV(w, doc, export.Kind(c.Kind))
	})
}

type ExportJSONCmd struct {
	Habit  string `help:"Only export this habit (ID, ID prefix or title)."`
	Output string `short:"o" help:"Output file. Defaults to stdout." default:"-"`
}

func (c *ExportJSONCmd) Run(ctx *cli.Context) error {
	doc, err := collect(ctx, c.Habit)
	if err != nil {
		return err
	}
	return export.ToFile(c.Output, ctx.Stdout(), func(w io.Writer) error {
		return export.WriteJSON(w, doc)
	})
}

func collect(ctx *cli.Context, ref string) (export.Document, error) {
	var snaps []stats.Snapshot
	if ref == "" {
		all, err := ctx.Manager.Snapshots(false)
		if err != nil {
			return export.Document{}, fmt.Errorf("failed to read habits: %w", err)
		}
		snaps = all
	} else {
		h, err := ctx.Manager.GetHabit(ref)
		if err != nil {
			return export.Document{}, err
		}
		s, err := ctx.Manager.Snapshot(h.ID)
		if err != nil {
			return export.Document{}, err
		}
		snaps = []stats.Snapshot{s}
	}
	return export.FromSnapshots(snaps, ctx.Now()), nil
}
