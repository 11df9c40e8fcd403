package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/phase-pitch/configs"
)

const envPrefix = "PHASE_PITCH"

var (
	configFile   string
	verbose      bool
	logLevel     string
	logFile      string
	outputFormat string
	configDir    string
	dataDir      string

	// Phase search flags shared by estimate and benchmark
	preset         string
	legacySentinel bool
	noPruning      bool
	concurrency    int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "phase-pitch",
	Short: "Pitch estimation by windowed-error phase search",
	Long: `Estimate the fundamental frequency of 8-bit audio by searching, at several
sample offsets, for the phase (period in samples) whose shifted window best
matches the original window.

Key features:
- Exact minimum-error phase search with early-exit pruning
- Averaging over multiple offsets, sequential or concurrent
- WAV, raw signed 8-bit, built-in fixtures and synthetic tones
- Note naming with cents deviation
- Optional YIN cross-check of every estimate
- Pruned vs exhaustive evaluation benchmark`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&configDir, "config-dir", "",
		"config directory (default is $HOME/.config/phase-pitch)")
	flags.StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/phase-pitch/phase-pitch.yaml)")
	flags.StringVar(&dataDir, "data-dir", "",
		"data directory (default is $HOME/.local/share/phase-pitch)")

	// Output and logging flags
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&logFile, "log-file", "", "also write logs to this file (reopened on SIGHUP)")
	flags.StringVarP(&outputFormat, "output", "o", "table", "output format (json, table, csv, yaml)")

	// Phase search flags
	flags.StringVar(&preset, "preset", "default", "search constants (default, low-strings)")
	flags.BoolVar(&legacySentinel, "legacy-sentinel", false,
		"seed the search with phase index 0 like the reference program")
	flags.BoolVar(&noPruning, "no-pruning", false, "evaluate every candidate over the full window")
	flags.IntVar(&concurrency, "concurrency", 1, "offsets searched in parallel")

	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_file", flags.Lookup("log-file"))
	viper.BindPFlag("output_format", flags.Lookup("output"))
	viper.BindPFlag("config_dir", flags.Lookup("config-dir"))
	viper.BindPFlag("data_dir", flags.Lookup("data-dir"))
	viper.BindPFlag("pitch.preset", flags.Lookup("preset"))
	viper.BindPFlag("pitch.legacy_sentinel", flags.Lookup("legacy-sentinel"))
	viper.BindPFlag("pitch.concurrency", flags.Lookup("concurrency"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "phase-pitch"))
		viper.AddConfigPath("/etc/phase-pitch")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("phase-pitch")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	configs.ApplyDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// initializeConfig runs after flag parsing
func initializeConfig(cmd *cobra.Command) error {
	if noPruning {
		viper.Set("pitch.pruning", false)
	}
	return bindFlags(cmd, viper.GetViper())
}

// bindFlags binds each command-local flag to the viper key of the same name
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}

		if err := v.BindEnv(f.Name, envPrefix+"_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
