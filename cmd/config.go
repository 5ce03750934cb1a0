package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage domfun configuration",
	Long:  `Create and inspect the domfun configuration file.`,
}

const defaultConfig = `# domfun configuration
# Every key can also be set with a DOMFUN_ environment variable,
# e.g. DOMFUN_PREDICT_INTEGRATION_METHOD=stouffer.

log_format: console   # console or json
threads: 0            # 0 or 1 runs serially

predict:
  integration_method: fisher      # fisher, harmonic, stouffer, average, sum
  dof_policy: maxnum
  domain_category: superfamilyID  # superfamilyID or funfamID
  identifier_mode: normal         # normal or mixed
  pvalue_threshold: 0.05
  association_threshold: 0
  domains_format: cath            # cath or batch
  function_scheme: ""             # go, kegg or reactome
  dedupe_associations: false
  strict: false
  meta: true

store:
  driver: sqlite                  # sqlite, postgres or mysql
  dsn: ""                         # e.g. /var/lib/domfun/runs.db

source:
  s3:
    profile: ""
    region: ""
  gcs:
    credentials_file: ""

report:
  format: table                   # table, json, yaml or html
`

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".domfun.yaml"), nil
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a default configuration file in your home directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}

		// Check if config already exists
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file already exists at %s\n", path)
			return nil
		}

		if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
			return fmt.Errorf("error writing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	Long:  `Print the settings in effect after merging the config file, environment and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# Configuration file: %s\n", used)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "# No configuration file found. Run 'domfun config init' to create one.")
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(viper.AllSettings()); err != nil {
			return fmt.Errorf("error encoding settings: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
