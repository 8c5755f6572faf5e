package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	StorageSQLite = "sqlite"
	StorageFile   = "file"
)

// Config represents application configuration
type Config struct {
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	Storage    StorageConfig    `mapstructure:"storage"`
	FiscalYear FiscalYearConfig `mapstructure:"fiscal_year"`
	Log        LogConfig        `mapstructure:"log"`
}

// CalendarConfig represents calendar configuration
type CalendarConfig struct {
	DateFormat string `mapstructure:"date_format"` // Go time layout, e.g. 2006-01-02
}

// StorageConfig represents holiday storage configuration
type StorageConfig struct {
	Type     string `mapstructure:"type"`      // "sqlite" or "file"
	DSN      string `mapstructure:"dsn"`       // SQLite database path
	SeedFile string `mapstructure:"seed_file"` // Empty means the embedded seed
}

// FiscalYearConfig represents fiscal year display settings
type FiscalYearConfig struct {
	Display string `mapstructure:"display"` // Format with a single %s for the year
	Length  int    `mapstructure:"length"`  // Leading year digits dropped, 2 gives FY16
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file. A missing config file is not an error
// unless configPath names it explicitly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("calendar.date_format", "2006-01-02")
	v.SetDefault("storage.type", StorageSQLite)
	v.SetDefault("storage.dsn", "workday-calendar.db")
	v.SetDefault("fiscal_year.display", "FY%s")
	v.SetDefault("fiscal_year.length", 2)
	v.SetDefault("log.level", "info")

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.workday-calendar")
		v.AddConfigPath("/etc/workday-calendar")
	}

	// Read environment variables, e.g. WORKDAY_STORAGE_DSN
	v.SetEnvPrefix("workday")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.GetType() {
	case StorageSQLite:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for sqlite type")
		}
	case StorageFile:
		if c.Storage.SeedFile == "" {
			return fmt.Errorf("storage.seed_file is required for file type")
		}
	default:
		return fmt.Errorf("storage.type must be 'sqlite' or 'file', got '%s'", c.Storage.Type)
	}

	if c.FiscalYear.Display != "" && strings.Count(c.FiscalYear.Display, "%s") != 1 {
		return fmt.Errorf("fiscal_year.display must contain exactly one %%s, got '%s'", c.FiscalYear.Display)
	}
	if c.FiscalYear.Length < 0 || c.FiscalYear.Length > 3 {
		return fmt.Errorf("fiscal_year.length must be between 0 and 3")
	}

	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level is invalid: %w", err)
		}
	}

	return nil
}

// GetType returns the storage type, defaulting to sqlite
func (c *StorageConfig) GetType() string {
	if c.Type == "" {
		return StorageSQLite
	}
	return c.Type
}

// GetDateFormat returns the date layout used for input and output
func (c *CalendarConfig) GetDateFormat() string {
	if c.DateFormat == "" {
		return "2006-01-02"
	}
	return c.DateFormat
}

// GetDisplay returns the fiscal year label format
func (c *FiscalYearConfig) GetDisplay() string {
	if c.Display == "" {
		return "FY%s"
	}
	return c.Display
}

// GetLevel returns the configured log level. Default: info
func (c *LogConfig) GetLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		return zapcore.InfoLevel
	}
	return level
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Storage.DSN = os.ExpandEnv(c.Storage.DSN)
	c.Storage.SeedFile = os.ExpandEnv(c.Storage.SeedFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
