package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/dpshade/pocket-notes/internal/errors"
	"github.com/dpshade/pocket-notes/internal/validation"
)

// EnvPrefix prefixes environment overrides, e.g. POCKET_NOTES_STORAGE_BACKEND
const EnvPrefix = "POCKET_NOTES"

// Config holds all application configuration
type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Storage StorageConfig `mapstructure:"storage"`
	Query   QueryConfig   `mapstructure:"query"`
	Tags    []string      `mapstructure:"tags"` // tag vocabulary
	Log     LogConfig     `mapstructure:"log"`
	Extract ExtractConfig `mapstructure:"extract"`

	// ConfigFile is the file that was read, if any
	ConfigFile string `mapstructure:"-"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`     // "file", "sqlite" or "memory"
	SQLitePath string `mapstructure:"sqlite_path"` // defaults to <data_dir>/notes.db
}

// QueryConfig holds list view defaults
type QueryConfig struct {
	PageSize  int   `mapstructure:"page_size"`
	PageSizes []int `mapstructure:"page_sizes"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
	File   string `mapstructure:"file"`   // empty logs to stderr
}

// ExtractConfig holds document extraction limits
type ExtractConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// DefaultDataDir returns ~/.pocket-notes
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pocket-notes"
	}
	return filepath.Join(home, ".pocket-notes")
}

// Load reads configuration from defaults, the config file, the environment
// and overrides, in increasing order of precedence. configFile may be empty,
// in which case config.yaml is looked up in the data directory. overrides
// holds values set by command-line flags, keyed like "storage.backend".
func Load(configFile string, overrides map[string]any) (*Config, error) {
	v := viper.New()

	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("query.page_size", 20)
	v.SetDefault("query.page_sizes", []int{5, 10, 20, 50})
	v.SetDefault("tags", validation.DefaultVocabulary)
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("extract.max_bytes", 32<<20)

	// Environment variables override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range overrides {
		v.Set(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfig, "error reading config file")
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(expandHome(v.GetString("data_dir")))
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, errors.ErrCodeConfig, "error reading config file")
			}
			// Config file not found, using defaults
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfig, "error unmarshaling config")
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	cfg.DataDir = expandHome(cfg.DataDir)
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.DataDir, "notes.db")
	}
	cfg.Storage.SQLitePath = expandHome(cfg.Storage.SQLitePath)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values
func (c *Config) Validate() error {
	checks := []*validation.ValidationResult{
		validation.ValidateOption("storage.backend", c.Storage.Backend, []string{"file", "sqlite", "memory"}),
		validation.ValidateOption("log.format", strings.ToLower(c.Log.Format), []string{"text", "json"}),
		validation.ValidatePageSize(c.Query.PageSize, nil),
	}
	for _, result := range checks {
		if !result.Valid {
			return errors.Wrap(result.ToAppError(), errors.ErrCodeConfig, "invalid configuration")
		}
	}
	if len(c.Tags) == 0 {
		return errors.NewAppError(errors.ErrCodeConfig, "tag vocabulary must not be empty")
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// String summarizes the effective configuration for display
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "data_dir: %s\n", c.DataDir)
	fmt.Fprintf(&b, "storage.backend: %s\n", c.Storage.Backend)
	if c.Storage.Backend == "sqlite" {
		fmt.Fprintf(&b, "storage.sqlite_path: %s\n", c.Storage.SQLitePath)
	}
	fmt.Fprintf(&b, "query.page_size: %d\n", c.Query.PageSize)
	fmt.Fprintf(&b, "tags: %s\n", strings.Join(c.Tags, ", "))
	fmt.Fprintf(&b, "log.level: %s\n", c.Log.Level)
	if c.ConfigFile != "" {
		fmt.Fprintf(&b, "config_file: %s\n", c.ConfigFile)
	}
	return b.String()
}
