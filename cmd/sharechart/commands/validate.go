package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
)

// ErrValidationFailed is returned when the payload does not satisfy the
// schema. The problems were already printed.
var ErrValidationFailed = errors.New("dataset validation failed")

var errMissingInput = errors.New("missing input: pass a file or - for stdin")

const stdinLabel = "stdin"

// NewValidateCommand creates the validate command.
func NewValidateCommand(g *Globals) *cobra.Command {
	var colorize, nocolor, printSchema bool

	cmd := &cobra.Command{
		Use:   "validate <file.json|file.yaml|->",
		Short: "Check a dataset override file against the payload schema",
		Long: `Check a dataset override against the payload JSON schema and the
label/value alignment rules applied to fetched data.

Examples:
  sharechart validate override.yaml
  curl -s https://example.com/api/marketshare | sharechart validate -
  sharechart validate --schema`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nocolor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			} else if colorize {
				color.NoColor = false //nolint:reassign // intentional override of library global
			}

			if printSchema {
				_, err := cmd.OutOrStdout().Write(dataset.Schema())

				return err
			}

			if len(args) == 0 {
				return errMissingInput
			}

			return runValidate(args[0], cmd.InOrStdin(), cmd.OutOrStdout(), g.Quiet)
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&printSchema, "schema", false, "print the payload JSON schema and exit")

	return cmd
}

func runValidate(input string, stdin io.Reader, stdout io.Writer, quiet bool) error {
	var (
		payload dataset.Payload
		err     error
		label   = input
	)

	if input == stdoutPath {
		label = stdinLabel
		payload, err = dataset.DecodePayload(stdin)
	} else {
		payload, err = dataset.LoadFile(input)
	}

	if err == nil {
		if !quiet {
			color.New(color.FgGreen).Fprintf(stdout, "Dataset is valid (%s)\n", label)
			fmt.Fprintf(stdout, "  Countries: %d\n  Snapshots: %d\n", len(payload), countSnapshots(payload))
		}

		return nil
	}

	var verr *dataset.ValidationError
	if !errors.As(err, &verr) {
		if errors.Is(err, dataset.ErrInvalidPayload) {
			color.New(color.FgRed).Fprintf(stdout, "Dataset validation failed (%s)\n  - %v\n", label, err)

			return ErrValidationFailed
		}

		return err
	}

	color.New(color.FgRed).Fprintf(stdout, "Dataset validation failed (%s)\n", label)
	fmt.Fprintf(stdout, "\nErrors:\n")

	for _, problem := range verr.Problems {
		color.New(color.FgRed).Fprintf(stdout, "  - %s\n", problem)
	}

	return ErrValidationFailed
}

func countSnapshots(p dataset.Payload) int {
	n := 0
	for _, years := range p {
		n += len(years)
	}

	return n
}
