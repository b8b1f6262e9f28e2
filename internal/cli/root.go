// Package cli implements the wikicull command line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wikicull/wikicull/internal/app"
	"github.com/wikicull/wikicull/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wikicull",
	Short: "Wikicull - cull trivial diffs from contributor copyright listings",
	Long: `Wikicull reads a wikitext listing of contributor edits, fetches the
text each diff added, strips markup that never carries copyrightable
prose (references, external links, comments) and flags the diffs that
are too small or too mechanical to need a human review.

It never judges whether an edit infringes anything; it only removes the
diffs no reviewer would want to open.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("wikicull v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wikicull/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".wikicull"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match WIKICULL_*
	viper.SetEnvPrefix("WIKICULL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the runtime config: defaults overridden by whatever
// the config file carries. Flag overrides are applied by each command.
func loadConfig() *app.Config {
	cfg := app.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
	}
	return cfg
}

// newLogger logs JSON lines to stderr; quiet unless --verbose.
func newLogger(component string) logging.Logger {
	if verbose {
		return logging.NewWriterLogger(component, os.Stderr)
	}
	return logging.NewWriterLogger(component, io.Discard)
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
