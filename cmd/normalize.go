package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/normalize"
	"github.com/domfun/domfun/internal/predictor"
	"github.com/domfun/domfun/internal/source"
)

func init() {
	rootCmd.AddCommand(normalizeCmd)

	f := normalizeCmd.Flags()
	f.StringP("input", "a", "", "predictions file to normalize")
	f.StringP("integration-method", "i", "", "integration method of the input (default: from the metadata sidecar, else fisher)")
	f.StringP("mode", "m", "normal", "normalization mode for higher-is-better methods: normal, max or rank")
	f.StringP("output", "o", "-", "normalized predictions output")
}

var normalizeFlagKeys = map[string]string{
	"input":              "normalize.input",
	"integration-method": "normalize.integration_method",
	"mode":               "normalize.mode",
	"output":             "normalize.output",
}

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rescale combined scores into (0,1]",
	Long: `Rescale the combined scores of a predictions file for assessment tools.

Scores of lower-is-better methods (fisher, harmonic) become 1 - score and rows
at or below 0.001 are dropped. Other methods are rescaled over the whole file:
normal clips z-scores to [-2, 2] and maps them to z/4 + 0.5, max divides by the
largest score and rank uses the fractional rank.

Examples:
  domfun normalize -a predictions.tsv -o normalized.tsv
  domfun normalize -a sum_predictions.tsv -i sum -m max`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), normalizeFlagKeys)
	},
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, err := requireFlag("normalize.input", "input")
	if err != nil {
		return err
	}
	mode, err := normalize.ParseMode(viper.GetString("normalize.mode"))
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	opener := newOpener()
	defer opener.Close()

	methodName := viper.GetString("normalize.integration_method")
	if methodName == "" {
		methodName = string(predictor.MethodFisher)
		if meta, err := readSidecar(cmd, opener, input); err == nil {
			methodName = meta.IntegrationMethod
			logger.Debug("integration method from sidecar", zap.String("method", methodName))
		}
	}
	method, err := predictor.ParseMethod(methodName)
	if err != nil {
		return err
	}

	var preds []predictor.Prediction
	if err := readFrom(ctx, opener, input, func(r io.Reader) error {
		preds, err = dataset.ReadPredictions(r, input)
		return err
	}); err != nil {
		return err
	}

	out, err := normalize.Normalize(preds, method, mode)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", input, err)
	}
	logger.Info("normalized predictions",
		zap.String("method", string(method)),
		zap.Int("rows_in", len(preds)),
		zap.Int("rows_out", len(out)))

	return writeTo(ctx, opener, viper.GetString("normalize.output"), func(w io.Writer) error {
		return dataset.WritePredictions(w, out)
	})
}

// readSidecar loads the metadata written next to a predictions file.
func readSidecar(cmd *cobra.Command, o *source.Opener, predictionsPath string) (*dataset.Metadata, error) {
	var meta *dataset.Metadata
	err := readFrom(cmd.Context(), o, dataset.SidecarPath(predictionsPath), func(r io.Reader) error {
		var err error
		meta, err = dataset.ReadMetadata(r)
		return err
	})
	return meta, err
}
