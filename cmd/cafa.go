package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/domfun/domfun/internal/cafa"
	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/predictor"
)

func init() {
	rootCmd.AddCommand(cafaCmd)
	cafaCmd.AddCommand(cafaExportCmd)

	f := cafaExportCmd.Flags()
	f.StringP("benchmark-path", "b", "", "benchmark directory of the assessment")
	f.StringP("accession-genes", "c", "", "accession<TAB>gene dictionary")
	f.StringP("target-genes", "d", "", "target<TAB>gene dictionary")
	f.StringP("results", "g", "results4CAFA", "assessment results directory written into the configs")
	f.StringP("model", "m", "1", "model number of the submission")
	f.StringP("output-path", "o", ".", "directory for submission files")
	f.StringP("obo-path", "p", "", "ontology OBO file of the assessment")
	f.StringP("untranslated-path", "u", ".", "directory for untranslated protein lists")
	f.StringP("yaml-path", "y", ".", "directory for assessment and plot configs")
}

var cafaFlagKeys = map[string]string{
	"benchmark-path":    "cafa.benchmark_path",
	"accession-genes":   "cafa.accession_genes",
	"target-genes":      "cafa.target_genes",
	"results":           "cafa.results",
	"model":             "cafa.model",
	"output-path":       "cafa.output_path",
	"obo-path":          "cafa.obo_path",
	"untranslated-path": "cafa.untranslated_path",
	"yaml-path":         "cafa.yaml_path",
}

// cafaCmd represents the cafa command
var cafaCmd = &cobra.Command{
	Use:   "cafa",
	Short: "Prepare predictions for CAFA assessment",
}

var cafaExportCmd = &cobra.Command{
	Use:   "export <predictions>...",
	Short: "Write CAFA submissions and assessment configs",
	Long: `Translate normalized predictions to CAFA target ids and write, for every
predictions file, a submission file, an assessment launch config and the list
of proteins that could not be translated. A plot config covering all
submissions is written to the yaml directory.

Each predictions file must have a metadata sidecar; the domain category and
association method recorded there name the submission.

Examples:
  domfun cafa export norm_funfam.tsv -c acc2gene.tsv -d targets.tsv -p go.obo -b bench/`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), cafaFlagKeys)
	},
	RunE: runCafaExport,
}

func runCafaExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	accessionPath, err := requireFlag("cafa.accession_genes", "accession-genes")
	if err != nil {
		return err
	}
	targetPath, err := requireFlag("cafa.target_genes", "target-genes")
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

	var accessionGenes, geneTargets map[string][]string
	if err := readFrom(ctx, opener, accessionPath, func(r io.Reader) error {
		accessionGenes, err = dataset.ReadDictionary(r, accessionPath, false)
		return err
	}); err != nil {
		return err
	}
	if err := readFrom(ctx, opener, targetPath, func(r io.Reader) error {
		geneTargets, err = dataset.ReadDictionary(r, targetPath, true)
		return err
	}); err != nil {
		return err
	}

	model := viper.GetString("cafa.model")
	outDir := viper.GetString("cafa.output_path")
	yamlDir := viper.GetString("cafa.yaml_path")
	var submissions []string

	for _, path := range args {
		meta, err := readSidecar(cmd, opener, path)
		if err != nil {
			return fmt.Errorf("%s: metadata sidecar required: %w", path, err)
		}
		var preds []predictor.Prediction
		if err := readFrom(ctx, opener, path, func(r io.Reader) error {
			preds, err = dataset.ReadPredictions(r, path)
			return err
		}); err != nil {
			return err
		}

		rows, untranslated := cafa.Translate(preds, accessionGenes, geneTargets)
		header := cafa.HeaderFor(meta, model)
		names := cafa.NamesFor(header, meta)
		submission := joinURI(outDir, names.Submission)

		if err := writeTo(ctx, opener, submission, func(w io.Writer) error {
			return cafa.WriteSubmission(w, header, rows)
		}); err != nil {
			return err
		}
		if err := writeTo(ctx, opener, joinURI(yamlDir, names.Config), func(w io.Writer) error {
			return cafa.WriteYAML(w, cafa.AssessConfig{Assess: cafa.Assess{
				File:      submission,
				OBO:       viper.GetString("cafa.obo_path"),
				Benchmark: viper.GetString("cafa.benchmark_path"),
				Results:   viper.GetString("cafa.results"),
			}})
		}); err != nil {
			return err
		}
		if err := writeTo(ctx, opener, joinURI(viper.GetString("cafa.untranslated_path"), names.Untranslated), func(w io.Writer) error {
			return cafa.WriteUntranslated(w, untranslated)
		}); err != nil {
			return err
		}

		submissions = append(submissions, strings.TrimSuffix(names.Submission, ".txt"))
		logger.Info("submission written",
			zap.String("predictions", path),
			zap.String("submission", submission),
			zap.Int("rows", len(rows)),
			zap.Int("untranslated", len(untranslated)))
	}

	return writeTo(ctx, opener, joinURI(yamlDir, "plot_all.yaml"), func(w io.Writer) error {
		return cafa.WriteYAML(w, cafa.PlotConfig{
			Results: viper.GetString("cafa.results"),
			Title:   "all",
			Smooth:  "N",
			Files:   submissions,
		})
	})
}

// joinURI appends name to a directory path or object-store prefix.
func joinURI(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}
