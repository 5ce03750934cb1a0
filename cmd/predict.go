package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/domfun/domfun/internal/dataset"
	"github.com/domfun/domfun/internal/funsys"
	"github.com/domfun/domfun/internal/metrics"
	"github.com/domfun/domfun/internal/predictor"
	"github.com/domfun/domfun/internal/report"
	"github.com/domfun/domfun/internal/source"
	"github.com/domfun/domfun/internal/store"
)

func init() {
	rootCmd.AddCommand(predictCmd)

	f := predictCmd.Flags()
	f.StringP("input-associations", "a", "", "domain-function association table (function, domain, strength)")
	f.StringP("domain-category", "c", "superfamilyID", "domain category: superfamilyID or funfamID")
	f.StringP("protein-domains-file", "f", "", "protein-domain assignments (CATH table or batch file)")
	f.String("domains-format", "cath", "protein-domain file format: cath or batch")
	f.StringP("integration-method", "i", "fisher", "integration method: fisher, harmonic, stouffer, average, sum")
	f.String("dof-policy", "maxnum", "sample length policy for fisher and stouffer")
	f.StringP("identifier-mode", "I", "normal", "identifier mode: normal or mixed")
	f.StringP("output", "o", "-", "predictions output (path, s3://, gs:// or - for stdout)")
	f.StringP("proteins", "p", "", "proteins to predict: a file or an inline '|'-separated list")
	f.Float64P("pvalue-threshold", "t", 0.05, "combined score threshold")
	f.Float64P("association-threshold", "T", 0, "minimum association strength kept in the index")
	f.BoolP("multiple-proteins", "u", false, "queries are '!'-separated profiles of '|'-separated proteins")
	f.Bool("sort", false, "sort each protein's predictions by ascending score")
	f.Bool("strict", false, "abort on association rows with a non-numeric strength")
	f.Bool("dedupe-associations", false, "collapse repeated (function, domain) records")
	f.String("function-scheme", "", "canonicalise function ids: go, kegg or reactome")
	f.String("association-method", "", "label of the method that produced the association table")
	f.String("summary-format", "", "print a batch summary to stderr: table, json, yaml or html")
	f.String("metrics-file", "", "write batch metrics in Prometheus textfile format")
	f.String("store-driver", "sqlite", "results store driver: sqlite, postgres or mysql")
	f.String("store-dsn", "", "results store DSN; the run is recorded when set")
	f.Bool("meta", true, "write a metadata sidecar next to a file output")
}

var predictFlagKeys = map[string]string{
	"input-associations":    "predict.input_associations",
	"domain-category":       "predict.domain_category",
	"protein-domains-file":  "predict.protein_domains_file",
	"domains-format":        "predict.domains_format",
	"integration-method":    "predict.integration_method",
	"dof-policy":            "predict.dof_policy",
	"identifier-mode":       "predict.identifier_mode",
	"output":                "predict.output",
	"proteins":              "predict.proteins",
	"pvalue-threshold":      "predict.pvalue_threshold",
	"association-threshold": "predict.association_threshold",
	"multiple-proteins":     "predict.multiple_proteins",
	"sort":                  "predict.sort",
	"strict":                "predict.strict",
	"dedupe-associations":   "predict.dedupe_associations",
	"function-scheme":       "predict.function_scheme",
	"association-method":    "predict.association_method",
	"summary-format":        "predict.summary_format",
	"metrics-file":          "predict.metrics_file",
	"store-driver":          "store.driver",
	"store-dsn":             "store.dsn",
	"meta":                  "predict.meta",
}

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict functions for proteins from their domains",
	Long: `Predict functions for one or more proteins.

Every query's domains are looked up in the association table, the evidence
of each function is combined across domains with the chosen integration
method and the functions passing the threshold are written as
protein, domains, function, score rows.

Examples:
  domfun predict -a assoc.tsv -f cath.tsv -p P12345
  domfun predict -a assoc.tsv -f cath.tsv -p queries.txt -i stouffer -t 2 -P 8
  domfun predict -a s3://bucket/assoc.tsv.gz -f cath.tsv -p 'P1|P2!P3' -u -o out.tsv
  domfun predict -a assoc.tsv -f batch.tsv --domains-format batch -p ids.txt --summary-format table`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), predictFlagKeys)
	},
	RunE: runPredict,
}

type predictSettings struct {
	cfg           predictor.Config
	category      dataset.Category
	scheme        funsys.Scheme
	minStrength   float64
	associations  string
	domainsFile   string
	domainsFormat string
	proteins      string
	output        string
}

func loadPredictSettings() (*predictSettings, error) {
	s := &predictSettings{}
	var err error

	if s.cfg.Method, err = predictor.ParseMethod(viper.GetString("predict.integration_method")); err != nil {
		return nil, err
	}
	if s.cfg.DOF, err = predictor.ParseDOFPolicy(viper.GetString("predict.dof_policy")); err != nil {
		return nil, err
	}
	if s.cfg.Mode, err = predictor.ParseIdentifierMode(viper.GetString("predict.identifier_mode")); err != nil {
		return nil, err
	}
	if s.category, err = dataset.ParseCategory(viper.GetString("predict.domain_category")); err != nil {
		return nil, err
	}
	if s.scheme, err = funsys.ParseScheme(viper.GetString("predict.function_scheme")); err != nil {
		return nil, err
	}
	s.domainsFormat = viper.GetString("predict.domains_format")
	if s.domainsFormat != "cath" && s.domainsFormat != "batch" {
		return nil, fmt.Errorf("unknown domains format %q (valid: cath, batch)", s.domainsFormat)
	}
	s.cfg.Threshold = viper.GetFloat64("predict.pvalue_threshold")
	s.cfg.Workers = viper.GetInt("threads")
	s.minStrength = viper.GetFloat64("predict.association_threshold")
	if math.IsNaN(s.cfg.Threshold) || math.IsNaN(s.minStrength) {
		return nil, fmt.Errorf("thresholds must be numbers")
	}

	if s.associations, err = requireFlag("predict.input_associations", "input-associations"); err != nil {
		return nil, err
	}
	if s.domainsFile, err = requireFlag("predict.protein_domains_file", "protein-domains-file"); err != nil {
		return nil, err
	}
	if s.proteins, err = requireFlag("predict.proteins", "proteins"); err != nil {
		return nil, err
	}
	s.output = viper.GetString("predict.output")
	if s.output == "" {
		s.output = "-"
	}
	return s, nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	settings, err := loadPredictSettings()
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

	queries, err := loadQueries(ctx, opener, settings.proteins, viper.GetBool("predict.multiple_proteins"))
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		return fmt.Errorf("no proteins to predict")
	}

	catalog, err := loadCatalog(ctx, opener, settings, queries)
	if err != nil {
		return err
	}
	logger.Debug("loaded protein domains",
		zap.String("path", settings.domainsFile),
		zap.Int("proteins", len(catalog.ProteinDomains)))

	idx, badRows, err := loadIndex(ctx, opener, settings, catalog, logger)
	if err != nil {
		return err
	}
	m := metrics.New()
	m.RecordIndex(idx, badRows)

	p, err := predictor.New(idx, catalog, settings.cfg)
	if err != nil {
		return err
	}
	p.SetLogger(logger)

	start := time.Now()
	outcomes, stats := p.Run(ctx, queries)
	elapsed := time.Since(start)
	m.RecordBatch(stats, elapsed)

	if viper.GetBool("predict.sort") {
		for _, o := range outcomes {
			predictor.SortByScore(o.Predictions)
		}
	}
	preds := predictor.Flatten(outcomes)

	if err := writeTo(ctx, opener, settings.output, func(w io.Writer) error {
		return dataset.WritePredictions(w, preds)
	}); err != nil {
		return err
	}

	run := &store.Run{
		ID:                   uuid.NewString(),
		CreatedAt:            time.Now().UTC(),
		Method:               string(settings.cfg.Method),
		DomainCategory:       string(settings.category),
		IdentifierMode:       string(settings.cfg.Mode),
		PValueThreshold:      settings.cfg.Threshold,
		AssociationThreshold: settings.minStrength,
		AssociationsURI:      settings.associations,
		Stats:                stats,
		Skips:                store.SkipsFromOutcomes(outcomes),
	}

	dsn := viper.GetString("store.dsn")
	writeMeta := viper.GetBool("predict.meta") && settings.output != "-"
	if dsn != "" || writeMeta {
		if run.AssociationsChecksum, err = opener.Fingerprint(ctx, settings.associations); err != nil {
			return err
		}
	}

	if writeMeta {
		meta := &dataset.Metadata{
			RunID:                run.ID,
			CreatedAt:            run.CreatedAt,
			DomainCategory:       settings.category,
			IntegrationMethod:    run.Method,
			AssociationMethod:    viper.GetString("predict.association_method"),
			IdentifierMode:       run.IdentifierMode,
			PValueThreshold:      run.PValueThreshold,
			AssociationThreshold: run.AssociationThreshold,
			AssociationsChecksum: run.AssociationsChecksum,
		}
		if err := writeTo(ctx, opener, dataset.SidecarPath(settings.output), func(w io.Writer) error {
			return dataset.WriteMetadata(w, meta)
		}); err != nil {
			return err
		}
	}

	if dsn != "" {
		if err := saveRun(ctx, dsn, run, preds); err != nil {
			return err
		}
		logger.Info("run recorded", zap.String("run_id", run.ID))
	}

	if path := viper.GetString("predict.metrics_file"); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return err
		}
	}

	if format := viper.GetString("predict.summary_format"); format != "" {
		formatter, err := report.NewFormatter(format, viper.GetBool("color"))
		if err != nil {
			return err
		}
		out, err := formatter.FormatSummary(&report.BatchSummary{
			RunID:      run.ID,
			Method:     run.Method,
			Threshold:  run.PValueThreshold,
			Workers:    settings.cfg.Workers,
			Duration:   elapsed,
			Indexed:    idx.Records(),
			Duplicates: idx.Duplicates(),
			BadRows:    badRows,
			Stats:      stats,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.ErrOrStderr(), out)
	}
	return nil
}

// loadQueries reads proteins from a file when one exists at that path and
// otherwise parses the value as an inline list.
func loadQueries(ctx context.Context, o *source.Opener, proteins string, multiple bool) ([]predictor.Query, error) {
	if !source.Exists(proteins) {
		return dataset.ParseQueries(proteins, multiple), nil
	}
	var queries []predictor.Query
	err := readFrom(ctx, o, proteins, func(r io.Reader) error {
		var err error
		queries, err = dataset.ReadQueries(r, multiple)
		return err
	})
	return queries, err
}

func loadCatalog(ctx context.Context, o *source.Opener, s *predictSettings, queries []predictor.Query) (*predictor.Catalog, error) {
	catalog := &predictor.Catalog{}
	err := readFrom(ctx, o, s.domainsFile, func(r io.Reader) error {
		if s.domainsFormat == "batch" {
			pd, err := dataset.ReadProteinDomains(r, s.domainsFile)
			catalog.ProteinDomains = pd
			return err
		}
		cath, err := dataset.ReadCATH(r, dataset.CATHOptions{
			Path:      s.domainsFile,
			Category:  s.category,
			Whitelist: dataset.QueryIdentifiers(queries),
		})
		if err != nil {
			return err
		}
		catalog.ProteinDomains = cath.ProteinDomains
		catalog.GeneProteins = cath.GeneProteins
		return nil
	})
	return catalog, err
}

func loadIndex(ctx context.Context, o *source.Opener, s *predictSettings, catalog *predictor.Catalog, logger *zap.Logger) (*predictor.Index, int, error) {
	whitelist := predictor.DomainSet{}
	for _, domains := range catalog.ProteinDomains {
		for _, d := range domains {
			whitelist[d] = struct{}{}
		}
	}

	var idx *predictor.Index
	var badRows int
	err := readFrom(ctx, o, s.associations, func(r io.Reader) error {
		var err error
		idx, badRows, err = dataset.LoadIndex(r, dataset.AssociationOptions{
			Path:   s.associations,
			Scheme: s.scheme,
			Strict: viper.GetBool("predict.strict"),
			Warn: func(err error) {
				logger.Warn("skipped association row", zap.Error(err))
			},
		}, predictor.IndexOptions{
			MinStrength: s.minStrength,
			Whitelist:   whitelist,
			Dedupe:      viper.GetBool("predict.dedupe_associations"),
		})
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	if n := idx.Duplicates(); n > 0 && !viper.GetBool("predict.dedupe_associations") {
		logger.Warn("repeated (function, domain) records kept; use --dedupe-associations to collapse them",
			zap.Int("duplicates", n))
	}
	logger.Debug("indexed associations",
		zap.Int("records", idx.Records()),
		zap.Int("domains", idx.Domains()),
		zap.Int("skipped_rows", badRows))
	return idx, badRows, nil
}

func saveRun(ctx context.Context, dsn string, run *store.Run, preds []predictor.Prediction) error {
	dialect, err := store.ParseDialect(viper.GetString("store.driver"))
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, dialect, dsn)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.SaveRun(ctx, run, preds)
}
