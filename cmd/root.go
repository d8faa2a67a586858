package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/csvlens/internal/config"
	"github.com/KaramelBytes/csvlens/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile     string
	debug       bool
	flagLogLvl  string
	flagMaxFile int

	// Loaded configuration
	cfg *cfgpkg.Global
	// Shared logger; diagnostics go to stderr, results to stdout
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "csvlens",
	Short:         "csvlens: profile CSV files and surface insights",
	Long:          `csvlens parses CSV files, infers column types, computes descriptive statistics and outliers, and turns them into a ranked list of insights. Results are available from the command line or over a small HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.csvlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagLogLvl, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagMaxFile, "max-file-mb", 0, "maximum input file size in MB (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLvl != "" {
		cfg.LogLevel = flagLogLvl
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if f.Changed("max-file-mb") && flagMaxFile > 0 {
		cfg.MaxFileMB = flagMaxFile
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v, logging disabled\n", err)
		l = zap.NewNop()
	}
	logger = l
}

// settings returns the loaded configuration or the defaults when loading was skipped.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}
