package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/domfun/domfun/internal/logging"
	"github.com/domfun/domfun/internal/source"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "domfun",
	Short: "Predict protein functions from structural domains",
	Long: `domfun predicts the functions of proteins from their CATH structural domains
using a precomputed domain-function association table, and ships the
surrounding tooling: score normalization, validation against control sets,
network construction, CAFA submission export and coverage reports.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.domfun.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().IntP("threads", "P", 0, "number of parallel workers (0 or 1 runs serially)")
	rootCmd.PersistentFlags().Bool("color", false, "colorize table output")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("threads", rootCmd.PersistentFlags().Lookup("threads"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".domfun")
	}

	viper.SetEnvPrefix("DOMFUN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("debug") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func newLogger() (*zap.Logger, error) {
	return logging.New(viper.GetBool("debug"), viper.GetString("log_format"))
}

func newOpener() *source.Opener {
	return source.NewOpener(source.OptionsFromConfig())
}

// readFrom opens uri and hands the stream to fn.
func readFrom(ctx context.Context, o *source.Opener, uri string, fn func(io.Reader) error) error {
	r, err := o.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(r)
}

// writeTo creates uri and hands the stream to fn. The write only succeeds
// once the stream is closed.
func writeTo(ctx context.Context, o *source.Opener, uri string, fn func(io.Writer) error) (err error) {
	w, err := o.Create(ctx, uri)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to write %s: %w", uri, cerr)
		}
	}()
	return fn(w)
}

// bindFlags binds flags of the running command into viper. Binding happens
// when the command runs so that commands sharing a key do not shadow each
// other's flags.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

func requireFlag(key, flag string) (string, error) {
	v := strings.TrimSpace(viper.GetString(key))
	if v == "" {
		return "", fmt.Errorf("--%s is required", flag)
	}
	return v, nil
}
