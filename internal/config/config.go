package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MeKo-Tech/qrlocal/internal/barcode"
	"github.com/MeKo-Tech/qrlocal/internal/batch"
	"github.com/MeKo-Tech/qrlocal/internal/imageio"
	"github.com/MeKo-Tech/qrlocal/internal/webcam"
	"gopkg.in/yaml.v3"
)

var (
	validLogLevels     = []string{"debug", "info", "warn", "error"}
	validOutputFormats = []string{"text", "json"}
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	load := imageio.DefaultOptions()
	cam := webcam.DefaultConfig()
	return Config{
		LogLevel: "info",
		Decode: DecodeConfig{
			Backends:  barcode.Names(),
			Formats:   []string{},
			TryHarder: true,
			Workers:   batch.DefaultWorkers,
		},
		Input: InputConfig{
			AutoOrient: load.AutoOrient,
		},
		PDF: PDFConfig{
			Page: load.PDFPage,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Webcam: WebcamConfig{
			Device: cam.DeviceID,
			Window: cam.Window,
			Title:  cam.Title,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if err := c.validateBasicEnums(); err != nil {
		return err
	}
	if err := c.validateDecode(); err != nil {
		return err
	}
	if c.PDF.Page < 1 {
		return fmt.Errorf("invalid pdf page: %d (pages start at 1)", c.PDF.Page)
	}
	if c.Webcam.Device < 0 {
		return fmt.Errorf("invalid webcam device: %d (must not be negative)", c.Webcam.Device)
	}
	return nil
}

func (c *Config) validateBasicEnums() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Output.Format != "" && !slices.Contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validOutputFormats, ", "))
	}
	return nil
}

func (c *Config) validateDecode() error {
	if len(c.Decode.Backends) == 0 {
		return fmt.Errorf("decode.backends must name at least one backend (%s)", strings.Join(barcode.Names(), ", "))
	}
	seen := make(map[string]bool, len(c.Decode.Backends))
	for _, name := range c.Decode.Backends {
		if !slices.Contains(barcode.Names(), name) {
			return fmt.Errorf("unknown backend: %s (must be one of: %s)", name, strings.Join(barcode.Names(), ", "))
		}
		if seen[name] {
			return fmt.Errorf("backend listed twice: %s", name)
		}
		seen[name] = true
	}
	if _, err := barcode.ParseFormats(c.Decode.Formats); err != nil {
		return err
	}
	if c.Decode.Workers <= 0 {
		return fmt.Errorf("invalid decode workers: %d (must be positive)", c.Decode.Workers)
	}
	return nil
}

// SlogLevel maps the logging settings to a slog level. Debug and Verbose
// both force debug output.
func (c *Config) SlogLevel() slog.Level {
	if c.Debug || c.Verbose {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ToBarcodeOptions converts decode settings to backend options.
func (c *Config) ToBarcodeOptions() (barcode.Options, error) {
	formats, err := barcode.ParseFormats(c.Decode.Formats)
	if err != nil {
		return barcode.Options{}, err
	}
	return barcode.Options{Formats: formats, TryHarder: c.Decode.TryHarder, Multi: true}, nil
}

// ToLoadOptions converts input and PDF settings to loader options.
func (c *Config) ToLoadOptions() imageio.Options {
	return imageio.Options{
		AutoOrient:  c.Input.AutoOrient,
		PDFPage:     c.PDF.Page,
		PDFPassword: c.PDF.Password,
	}
}

// ToWebcamConfig converts webcam settings.
func (c *Config) ToWebcamConfig() webcam.Config {
	return webcam.Config{DeviceID: c.Webcam.Device, Window: c.Webcam.Window, Title: c.Webcam.Title}
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}

// WriteDefaultConfigFile writes the default configuration to filename.
// An existing file is only replaced when force is set.
func WriteDefaultConfigFile(filename string, force bool) error {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", filename)
		}
	}

	cfg := DefaultConfig()
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(filename, out, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
