package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/report"
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportCoverageCmd)

	reportCmd.PersistentFlags().String("format", "table", "output format: table, json, yaml or html")
	reportCmd.PersistentFlags().StringP("output", "o", "-", "report output")

	f := reportCoverageCmd.Flags()
	f.StringP("cath", "a", "", "CATH domain assignment table")
	f.StringP("targets", "b", "", "CAFA target gene identifiers")
	f.StringP("training", "c", "", "CAFA training protein accessions")
	f.StringP("domain-category", "d", "superfamilyID", "domain category: superfamilyID or funfamID")
}

var reportCoverageFlagKeys = map[string]string{
	"format":          "report.format",
	"output":          "report.output",
	"cath":            "report.coverage.cath",
	"targets":         "report.coverage.targets",
	"training":        "report.coverage.training",
	"domain-category": "report.coverage.domain_category",
}

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Dataset reports",
}

var reportCoverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report how many CAFA proteins have CATH domains",
	Long: `Count the CAFA target genes and training proteins that have at least one
domain in a CATH assignment table.

Examples:
  domfun report coverage -a cath.tsv -b targets.txt -c training.txt
  domfun report coverage -a cath.tsv -b targets.txt -c training.txt --format html -o coverage.html`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), reportCoverageFlagKeys)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		category, err := dataset.ParseCategory(viper.GetString("report.coverage.domain_category"))
		if err != nil {
			return err
		}
		paths := make(map[string]string)
		for _, k := range []string{"cath", "targets", "training"} {
			if paths[k], err = requireFlag("report.coverage."+k, k); err != nil {
				return err
			}
		}
		formatter, err := report.NewFormatter(viper.GetString("report.format"), viper.GetBool("color"))
		if err != nil {
			return err
		}

		opener := newOpener()
		defer opener.Close()

		var cath *dataset.CATH
		if err := readFrom(ctx, opener, paths["cath"], func(r io.Reader) error {
			cath, err = dataset.ReadCATH(r, dataset.CATHOptions{Path: paths["cath"], Category: category})
			return err
		}); err != nil {
			return err
		}
		var targets, training []string
		if err := readFrom(ctx, opener, paths["targets"], func(r io.Reader) error {
			targets, err = dataset.ReadIdentifiers(r)
			return err
		}); err != nil {
			return err
		}
		if err := readFrom(ctx, opener, paths["training"], func(r io.Reader) error {
			training, err = dataset.ReadIdentifiers(r)
			return err
		}); err != nil {
			return err
		}

		coverage := report.ComputeCoverage(cath, targets, training)
		out, err := formatter.FormatCoverage(&coverage)
		if err != nil {
			return err
		}
		return report.NewExporter(opener).Export(ctx, viper.GetString("report.output"), out)
	},
}
