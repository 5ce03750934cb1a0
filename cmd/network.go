package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/network"
)

func init() {
	rootCmd.AddCommand(networkCmd)

	f := networkCmd.Flags()
	f.StringP("protein-domains", "a", "", "protein-domain assignments (CATH table or batch file)")
	f.String("domains-format", "cath", "protein-domain file format: cath or batch")
	f.StringP("annotated-proteins", "b", "", "protein<TAB>function annotations (required for tripartite)")
	f.StringP("domain-category", "d", "funfamID", "domain category: superfamilyID or funfamID")
	f.StringP("kind", "k", "tripartite", "network kind: bipartite or tripartite")
	f.StringP("output", "o", "-", "edge list output")
}

var networkFlagKeys = map[string]string{
	"protein-domains":    "network.protein_domains",
	"domains-format":     "network.domains_format",
	"annotated-proteins": "network.annotated_proteins",
	"domain-category":    "network.domain_category",
	"kind":               "network.kind",
	"output":             "network.output",
}

// networkCmd represents the network command
var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Build a protein-centred edge list",
	Long: `Write node<TAB>protein edges for graph-based association tools.

A bipartite network links domains to proteins. A tripartite network links the
functions and the domains of every annotated protein.

Examples:
  domfun network -k tripartite -a cath.tsv -b annotations.tsv -o tripartite.tsv
  domfun network -k bipartite -a batch.tsv --domains-format batch`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), networkFlagKeys)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		kind, err := network.ParseKind(viper.GetString("network.kind"))
		if err != nil {
			return err
		}
		category, err := dataset.ParseCategory(viper.GetString("network.domain_category"))
		if err != nil {
			return err
		}
		domainsPath, err := requireFlag("network.protein_domains", "protein-domains")
		if err != nil {
			return err
		}
		annotationsPath := viper.GetString("network.annotated_proteins")
		if kind == network.Tripartite && annotationsPath == "" {
			if _, err := requireFlag("network.annotated_proteins", "annotated-proteins"); err != nil {
				return err
			}
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		opener := newOpener()
		defer opener.Close()

		var domains map[string][]string
		if err := readFrom(ctx, opener, domainsPath, func(r io.Reader) error {
			if viper.GetString("network.domains_format") == "batch" {
				domains, err = dataset.ReadProteinDomains(r, domainsPath)
				return err
			}
			cath, err := dataset.ReadCATH(r, dataset.CATHOptions{Path: domainsPath, Category: category})
			if err != nil {
				return err
			}
			domains = cath.ProteinDomains
			return nil
		}); err != nil {
			return err
		}

		var annotations map[string][]string
		if annotationsPath != "" {
			if err := readFrom(ctx, opener, annotationsPath, func(r io.Reader) error {
				annotations, err = dataset.ReadDictionary(r, annotationsPath, false)
				return err
			}); err != nil {
				return err
			}
		}

		edges, err := network.Build(kind, annotations, domains)
		if err != nil {
			return err
		}
		logger.Info("network built", zap.String("kind", string(kind)), zap.Int("edges", len(edges)))

		return writeTo(ctx, opener, viper.GetString("network.output"), func(w io.Writer) error {
			return network.Write(w, edges)
		})
	},
}
