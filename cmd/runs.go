package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/domfun/domfun/internal/report"
	"github.com/domfun/domfun/internal/store"
)

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsCmd.PersistentFlags().String("store-driver", "sqlite", "results store driver: sqlite, postgres or mysql")
	runsCmd.PersistentFlags().String("store-dsn", "", "results store DSN")
	runsCmd.PersistentFlags().String("format", "table", "output format: table, json, yaml or html")

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to list (0 lists all)")
}

var runsFlagKeys = map[string]string{
	"store-driver": "store.driver",
	"store-dsn":    "store.dsn",
	"format":       "report.format",
}

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse recorded prediction runs",
	Long: `Browse the prediction runs recorded with predict --store-dsn.

Examples:
  domfun runs list --store-dsn runs.db
  domfun runs show 2f0c7d0e-... --store-dsn runs.db --format yaml
  domfun runs list --store-driver postgres --store-dsn postgres://user@host/domfun`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), runsFlagKeys)
	},
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, formatter, err := openRunStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		out, err := formatter.FormatRuns(runs)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its skipped queries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, formatter, err := openRunStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		skips, err := st.Skips(cmd.Context(), run.ID)
		if err != nil {
			return err
		}
		out, err := formatter.FormatRun(&report.RunDetail{Run: *run, Skips: skips})
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func openRunStore(cmd *cobra.Command) (*store.Store, *report.Formatter, error) {
	dsn, err := requireFlag("store.dsn", "store-dsn")
	if err != nil {
		return nil, nil, err
	}
	dialect, err := store.ParseDialect(viper.GetString("store.driver"))
	if err != nil {
		return nil, nil, err
	}
	formatter, err := report.NewFormatter(viper.GetString("report.format"), viper.GetBool("color"))
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(cmd.Context(), dialect, dsn)
	if err != nil {
		return nil, nil, err
	}
	return st, formatter, nil
}
