package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Network NetworkConfig `mapstructure:"network"`
	Log     LogConfig     `mapstructure:"log"`
}

// CatalogConfig holds Google Books settings
type CatalogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// NetworkConfig holds network settings
type NetworkConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var cfg *Config

// UserAgent is the default User-Agent, overridden by the cli with the build version
var UserAgent = "bookfinder/dev"

var defaults = map[string]interface{}{
	"catalog.base_url":        "https://www.googleapis.com/books/v1",
	"catalog.api_key":         "",
	"network.connect_timeout": 15 * time.Second,
	"network.read_timeout":    15 * time.Second,
	"log.level":               "warn",
	"log.file":                "",
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bookfinder")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetLogPath returns the log file used while the TUI owns the terminal
func GetLogPath() string {
	return filepath.Join(GetConfigDir(), "bookfinder.log")
}

// Init initializes the configuration
func Init(cfgFile string) error {
	// .env in the working directory is optional
	_ = godotenv.Load()

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	viper.SetDefault("network.user_agent", UserAgent)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
	}

	// Environment variable overrides
	viper.SetEnvPrefix("BOOKFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return err
		}
	}

	cfg = nil
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
		_ = viper.Unmarshal(cfg)
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	return cfg
}

// ConfigFile returns the file Set writes to: the one Init loaded, or the
// default path when none was found
func ConfigFile() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return GetConfigPath()
}

// Set sets a configuration value and saves it to ConfigFile
func Set(key, value string) error {
	viper.Set(key, value)

	path := ConfigFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	// Reset cached config
	cfg = nil

	return viper.WriteConfigAs(path)
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

// Keys returns every known configuration key, sorted
func Keys() []string {
	keys := make([]string, 0, len(defaults)+1)
	for key := range defaults {
		keys = append(keys, key)
	}
	keys = append(keys, "network.user_agent")
	sort.Strings(keys)
	return keys
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
