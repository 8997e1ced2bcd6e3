package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
	"github.com/Sumatoshi-tech/sharechart/pkg/palette"
	"github.com/Sumatoshi-tech/sharechart/pkg/summary"
)

// shareBarWidth is the width of the inline share bar at 100%.
const shareBarWidth = 40

// NewShowCommand creates the show command.
func NewShowCommand(g *Globals) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a market share breakdown as a table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			obsCfg, err := g.observabilityConfig(cfg, observability.ModeCLI)
			if err != nil {
				return err
			}

			state, err := sel.state(cfg)
			if err != nil {
				return err
			}

			store, err := openDataset(cmd.Context(), cfg, observability.NewLogger(cmd.ErrOrStderr(), obsCfg))
			if err != nil {
				return err
			}

			snap := store.Get(state.Country, state.Year)

			return writeBreakdown(cmd.OutOrStdout(), snap, state.Country, state.Year, store.Source())
		},
	}

	sel.bind(cmd)

	return cmd
}

// writeBreakdown prints the brands of snap with the top brand summary.
func writeBreakdown(w io.Writer, snap dataset.Snapshot, country string, year int, source dataset.Source) error {
	top := summary.Summarize(summary.None, snap.Labels, snap.Values, country, year)

	if snap.Empty() {
		color.New(color.FgYellow).Fprintf(w, "%s: %s (%s, %d)\n", top.Headline, top.Detail, country, year)

		return nil
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"#", "Brand", "Share", "Color", ""})

	colors := palette.For(snap.Labels)
	topIndex := summary.TopIndex(snap.Values)

	for i, label := range snap.Labels {
		brand := label
		if i == topIndex {
			brand = color.New(color.Bold).Sprint(label)
		}

		tbl.AppendRow(table.Row{
			i + 1,
			brand,
			summary.FormatValue(snap.Values[i]) + "%",
			colors[i],
			shareBar(snap.Values[i]),
		})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d brands", snap.Len()), "", "", ""})

	color.New(color.FgCyan).Fprintf(w, "%s %d (source: %s)\n", country, year, source.Label())

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	color.New(color.FgGreen).Fprintf(w, "%s\n", top.Headline)

	return nil
}

func shareBar(value float64) string {
	filled := int(value / 100 * shareBarWidth)
	filled = max(0, min(filled, shareBarWidth))

	return strings.Repeat("█", filled)
}
