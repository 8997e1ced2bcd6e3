package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
	"github.com/Sumatoshi-tech/sharechart/pkg/observability"
	"github.com/Sumatoshi-tech/sharechart/pkg/summary"
)

// Workbook layout.
const (
	summarySheet     = "Summary"
	defaultSheet     = "Sheet1"
	exportColWidth   = 16
	defaultExportOut = "sharechart.xlsx"
)

// NewExportCommand creates the export command.
func NewExportCommand(g *Globals) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dataset to an xlsx workbook",
		Long: `Write the dataset to an xlsx workbook: a Summary sheet with the top
brand of every country and year, then one sheet per country.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}

			obsCfg, err := g.observabilityConfig(cfg, observability.ModeCLI)
			if err != nil {
				return err
			}

			store, err := openDataset(cmd.Context(), cfg, observability.NewLogger(cmd.ErrOrStderr(), obsCfg))
			if err != nil {
				return err
			}

			return exportWorkbook(store, output, g.Quiet, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultExportOut, "workbook path")

	return cmd
}

func exportWorkbook(store *dataset.Store, output string, quiet bool, stderr io.Writer) error {
	f, err := buildWorkbook(store)
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	err = f.SaveAs(output)
	if err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	if !quiet {
		info, statErr := os.Stat(output)
		if statErr == nil {
			fmt.Fprintf(stderr, "wrote %s (%s, %d countries)\n",
				output, humanize.Bytes(uint64(info.Size())), len(store.Countries())) //nolint:gosec // file sizes are non-negative.
		}
	}

	return nil
}

// buildWorkbook lays out the store as sheets.
func buildWorkbook(store *dataset.Store) (*excelize.File, error) {
	f := excelize.NewFile()

	err := f.SetSheetName(defaultSheet, summarySheet)
	if err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	err = writeRow(f, summarySheet, 1, "Country", "Year", "Top brand", "Share (%)", "Brands")
	if err != nil {
		return nil, err
	}

	row := 2

	for _, country := range store.Countries() {
		_, err = f.NewSheet(country)
		if err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", country, err)
		}

		err = writeRow(f, country, 1, "Year", "Brand", "Share (%)")
		if err != nil {
			return nil, err
		}

		countryRow := 2

		for _, year := range store.Years() {
			snap := store.Get(country, year)
			if snap.Empty() {
				continue
			}

			for i, label := range snap.Labels {
				err = writeRow(f, country, countryRow, year, label, snap.Values[i])
				if err != nil {
					return nil, err
				}

				countryRow++
			}

			top := summary.TopIndex(snap.Values)

			err = writeRow(f, summarySheet, row, country, year, snap.Labels[top], snap.Values[top], snap.Len())
			if err != nil {
				return nil, err
			}

			row++
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell %d,%d: %w", col+1, row, err)
		}

		err = f.SetCellValue(sheet, cell, v)
		if err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}

		if row == 1 {
			name, nameErr := excelize.ColumnNumberToName(col + 1)
			if nameErr != nil {
				return fmt.Errorf("column %d: %w", col+1, nameErr)
			}

			err = f.SetColWidth(sheet, name, name, exportColWidth)
			if err != nil {
				return fmt.Errorf("column width %s: %w", name, err)
			}
		}
	}

	return nil
}
