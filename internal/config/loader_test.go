package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no user config around.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, ".config"))
	t.Chdir(tmpDir)
	return tmpDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// TestNewLoader tests loader creation.
func TestNewLoader(t *testing.T) {
	isolate(t)
	loader := NewLoader()
	if loader == nil {
		t.Fatal("NewLoader() returned nil")
	}

	v := viper.New()
	v.Set("webcam.title", "Scanner")
	cfg, err := NewLoaderWithViper(v).Load()
	require.NoError(t, err)
	assert.Equal(t, "Scanner", cfg.Webcam.Title)
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	assert.Equal(t, DefaultConfig().Decode.Backends, cfg.Decode.Backends)
	assert.Equal(t, 1, cfg.PDF.Page)
}

// TestLoadFromSearchPath tests that qrlocal.yaml in the working directory is found.
func TestLoadFromSearchPath(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "qrlocal.yaml"), `
log_level: debug
output:
  format: json
  copy: true
decode:
  backends: [zxing]
`)

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, debugLevel, cfg.LogLevel)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Copy)
	assert.Equal(t, []string{"zxing"}, cfg.Decode.Backends)
	assert.True(t, cfg.Decode.TryHarder, "unset keys keep defaults")
	assert.Contains(t, loader.GetConfigFileUsed(), "qrlocal.yaml")
}

// TestLoadWithValidYAMLFile tests loading from an explicit YAML file.
func TestLoadWithValidYAMLFile(t *testing.T) {
	dir := isolate(t)
	configFile := filepath.Join(dir, "custom.yaml")
	writeFile(t, configFile, `
verbose: true
pdf:
  page: 2
webcam:
  device: 1
  window: false
`)

	cfg, err := NewLoader().LoadWithFile(configFile)
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, 2, cfg.PDF.Page)
	assert.Equal(t, 1, cfg.Webcam.Device)
	assert.False(t, cfg.Webcam.Window)
	assert.Equal(t, "QR Decoder", cfg.Webcam.Title)
}

// TestLoadWithInvalidYAMLFile tests loading from an invalid YAML file.
func TestLoadWithInvalidYAMLFile(t *testing.T) {
	dir := isolate(t)
	configFile := filepath.Join(dir, "bad.yaml")
	writeFile(t, configFile, "output: [unclosed\n")

	_, err := NewLoader().LoadWithFile(configFile)
	assert.Error(t, err)
}

// TestLoadWithNonExistentFile tests loading from a non-existent file.
func TestLoadWithNonExistentFile(t *testing.T) {
	isolate(t)
	_, err := NewLoader().LoadWithFile("/nonexistent/qrlocal.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

// TestLoadWithValidationFailure tests that invalid values are rejected.
func TestLoadWithValidationFailure(t *testing.T) {
	dir := isolate(t)
	configFile := filepath.Join(dir, "invalid.yaml")
	writeFile(t, configFile, "output:\n  format: xml\n")

	_, err := NewLoader().LoadWithFile(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	require.NoError(t, os.Rename(configFile, filepath.Join(dir, "qrlocal.yaml")))
	cfg, err := NewLoader().LoadWithoutValidation("")
	require.NoError(t, err)
	assert.Equal(t, "xml", cfg.Output.Format)

	_, err = NewLoader().LoadWithoutValidation(filepath.Join(dir, "qrlocal.yaml"))
	require.NoError(t, err)
}

// TestExtensionlessFileIsNotConfig checks that a file named exactly like the
// config base name, such as a freshly built binary, is not parsed.
func TestExtensionlessFileIsNotConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ConfigFileName), "\x7fELF\x02\x01\x01\x00binary\x00garbage")

	loader := NewLoader()
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Output.Format, cfg.Output.Format)
	assert.Empty(t, loader.GetConfigFileUsed())

	writeFile(t, filepath.Join(dir, ConfigFileName+".yml"), "output:\n  format: json\n")
	loader = NewLoader()
	cfg, err = loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, ConfigFileName+".yml", filepath.Base(loader.GetConfigFileUsed()))
}

// TestEnvironmentVariableOverride tests QRLOCAL_ variables.
func TestEnvironmentVariableOverride(t *testing.T) {
	isolate(t)
	t.Setenv("QRLOCAL_LOG_LEVEL", "warn")
	t.Setenv("QRLOCAL_OUTPUT_FORMAT", "json")
	t.Setenv("QRLOCAL_PDF_PAGE", "4")
	t.Setenv("QRLOCAL_DECODE_BACKENDS", "zxing")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 4, cfg.PDF.Page)
	assert.Equal(t, []string{"zxing"}, cfg.Decode.Backends)
}

// TestExplicitValueBeatsFile tests that values set on the viper instance,
// as bound flags are, take precedence over the file.
func TestExplicitValueBeatsFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "qrlocal.yaml"), "output:\n  format: json\n")

	v := viper.New()
	v.Set("output.format", "text")
	cfg, err := NewLoaderWithViper(v).Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestGetResolvedConfig(t *testing.T) {
	isolate(t)
	loader := NewLoader()
	_, err := loader.Load()
	require.NoError(t, err)

	settings := loader.GetResolvedConfig()
	assert.Equal(t, infoLevel, settings["log_level"])
	assert.Contains(t, settings, "decode")
}

// TestGetConfigSearchPaths tests search path order.
func TestGetConfigSearchPaths(t *testing.T) {
	dir := isolate(t)

	paths := GetConfigSearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, dir)
	assert.Contains(t, paths, filepath.Join(dir, ".config", "qrlocal"))
	assert.Equal(t, "/etc/qrlocal", paths[len(paths)-1])
}
