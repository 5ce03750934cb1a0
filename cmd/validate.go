package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/predictor"
	"github.com/domfun/domfun/internal/report"
	"github.com/domfun/domfun/internal/validate"
)

func init() {
	rootCmd.AddCommand(validateCmd)

	f := validateCmd.Flags()
	f.StringP("input-predictions", "a", "", "predictions file")
	f.StringP("control-file", "c", "", "control set: protein<TAB>function;function;...")
	f.String("format", "table", "output format: table, json, yaml or html")
	f.StringP("output", "o", "-", "report output")
}

var validateFlagKeys = map[string]string{
	"input-predictions": "validate.input_predictions",
	"control-file":      "validate.control_file",
	"format":            "report.format",
	"output":            "validate.output",
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare predictions with a control set",
	Long: `Compute precision, recall and F1 of a predictions file against curated
protein annotations. Rates with a zero denominator are reported as undefined.

Examples:
  domfun validate -a predictions.tsv -c uniprot_control.tsv
  domfun validate -a predictions.tsv -c control.tsv --format json`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), validateFlagKeys)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		predsPath, err := requireFlag("validate.input_predictions", "input-predictions")
		if err != nil {
			return err
		}
		controlPath, err := requireFlag("validate.control_file", "control-file")
		if err != nil {
			return err
		}
		formatter, err := report.NewFormatter(viper.GetString("report.format"), viper.GetBool("color"))
		if err != nil {
			return err
		}

		opener := newOpener()
		defer opener.Close()

		var preds []predictor.Prediction
		if err := readFrom(ctx, opener, predsPath, func(r io.Reader) error {
			preds, err = dataset.ReadPredictions(r, predsPath)
			return err
		}); err != nil {
			return err
		}
		var control map[string][]string
		if err := readFrom(ctx, opener, controlPath, func(r io.Reader) error {
			control, err = dataset.ReadSetTable(r, controlPath, ";")
			return err
		}); err != nil {
			return err
		}

		result := validate.Evaluate(preds, control)
		out, err := formatter.FormatValidation(&result)
		if err != nil {
			return fmt.Errorf("format validation: %w", err)
		}
		return report.NewExporter(opener).Export(ctx, viper.GetString("validate.output"), out)
	},
}
