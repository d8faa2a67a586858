package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/csvlens/internal/parser"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const mb = 1024 * 1024

// Global configuration structure.
type Global struct {
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat  string `mapstructure:"log_format" yaml:"log_format"`
	MaxFileMB  int    `mapstructure:"max_file_mb" yaml:"max_file_mb"`
	SampleRows int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	// Output format for analyze: markdown|json|yaml
	ReportFormat string `mapstructure:"report_format" yaml:"report_format"`
	BatchWorkers int    `mapstructure:"batch_workers" yaml:"batch_workers"`

	// HTTP server
	ListenAddr  string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// MaxFileBytes converts the configured upload ceiling to bytes.
func (g *Global) MaxFileBytes() int64 {
	if g == nil || g.MaxFileMB <= 0 {
		return parser.DefaultMaxBytes
	}
	return int64(g.MaxFileMB) * mb
}

// Defaults returns the built-in settings used when neither a file nor the
// environment provides a value.
func Defaults() *Global {
	return &Global{
		LogLevel:     "info",
		LogFormat:    "console",
		MaxFileMB:    int(parser.DefaultMaxBytes / mb),
		SampleRows:   5,
		ReportFormat: "markdown",
		BatchWorkers: 4,
		ListenAddr:   ":8080",
		CORSOrigins:  []string{"*"},
	}
}

// DefaultPath returns ~/.csvlens/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".csvlens", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.csvlens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (CSVLENS_*, including a local .env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CSVLENS")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("max_file_mb", d.MaxFileMB)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("report_format", d.ReportFormat)
	v.SetDefault("batch_workers", d.BatchWorkers)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("cors_origins", d.CORSOrigins)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
