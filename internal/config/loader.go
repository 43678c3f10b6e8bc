package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "qrlocal"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "QRLOCAL"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader backed by a fresh viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// NewLoaderWithViper creates a loader on top of v, typically one that
// already has command-line flags bound to it.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load searches the standard locations for a config file and merges it with
// defaults, environment variables and bound flags.
func (l *Loader) Load() (*Config, error) {
	return l.load("", true)
}

// LoadWithoutValidation reads configFile (or searches when empty) and skips
// Validate, for commands that must work on a broken configuration.
func (l *Loader) LoadWithoutValidation(configFile string) (*Config, error) {
	return l.load(configFile, false)
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	return l.load(configFile, true)
}

func (l *Loader) load(configFile string, validate bool) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetResolvedConfig returns every key viper resolved, including keys the
// Config struct does not know about.
func (l *Loader) GetResolvedConfig() map[string]interface{} {
	return l.v.AllSettings()
}

func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	// QRLOCAL_OUTPUT_FORMAT -> output.format
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)
	l.v.SetDefault("debug", defaults.Debug)

	l.v.SetDefault("decode.backends", defaults.Decode.Backends)
	l.v.SetDefault("decode.formats", defaults.Decode.Formats)
	l.v.SetDefault("decode.try_harder", defaults.Decode.TryHarder)
	l.v.SetDefault("decode.workers", defaults.Decode.Workers)

	l.v.SetDefault("input.auto_orient", defaults.Input.AutoOrient)
	l.v.SetDefault("input.recursive", defaults.Input.Recursive)

	l.v.SetDefault("pdf.page", defaults.PDF.Page)
	l.v.SetDefault("pdf.password", defaults.PDF.Password)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.copy", defaults.Output.Copy)

	l.v.SetDefault("webcam.device", defaults.Webcam.Device)
	l.v.SetDefault("webcam.window", defaults.Webcam.Window)
	l.v.SetDefault("webcam.title", defaults.Webcam.Title)

	l.v.SetDefault("metrics.file", defaults.Metrics.File)
}

// GetConfigSearchPaths returns the paths where configuration files are searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigFileName))
	}

	return append(paths, filepath.Join("/etc", ConfigFileName))
}
