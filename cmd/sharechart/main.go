// Package main provides the entry point for the sharechart CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sharechart/cmd/sharechart/commands"
	"github.com/Sumatoshi-tech/sharechart/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	var globals commands.Globals

	rootCmd := &cobra.Command{
		Use:   "sharechart",
		Short: "Smartphone market share charts",
		Long: `sharechart serves an interactive market share chart and renders,
inspects and exports the underlying dataset.

Commands:
  serve     Interactive chart over HTTP
  render    Draw one chart to a file
  show      Print a breakdown as a table
  export    Write the dataset to an xlsx workbook
  validate  Check a dataset override file
  mcp       MCP server for AI agents`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&globals.ConfigPath, "config", "", "config file (default .sharechart.yaml in . or $HOME)")
	rootCmd.PersistentFlags().StringVar(&globals.DatasetFile, "dataset", "", "dataset override file, YAML or JSON (default dataset.file)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewServeCommand(&globals))
	rootCmd.AddCommand(commands.NewRenderCommand(&globals))
	rootCmd.AddCommand(commands.NewShowCommand(&globals))
	rootCmd.AddCommand(commands.NewExportCommand(&globals))
	rootCmd.AddCommand(commands.NewValidateCommand(&globals))
	rootCmd.AddCommand(commands.NewMCPCommand(&globals))
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
