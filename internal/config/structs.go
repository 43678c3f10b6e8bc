package config

// Config represents the complete configuration for qrlocal.
// It is assembled from configuration files, QRLOCAL_ environment variables
// and command-line flags, in increasing order of precedence.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	Debug    bool   `mapstructure:"debug" yaml:"debug" json:"debug"`

	Decode  DecodeConfig  `mapstructure:"decode" yaml:"decode" json:"decode"`
	Input   InputConfig   `mapstructure:"input" yaml:"input" json:"input"`
	PDF     PDFConfig     `mapstructure:"pdf" yaml:"pdf" json:"pdf"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`
	Webcam  WebcamConfig  `mapstructure:"webcam" yaml:"webcam" json:"webcam"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// DecodeConfig selects the backend chain and symbologies.
type DecodeConfig struct {
	// Backends in priority order.
	Backends []string `mapstructure:"backends" yaml:"backends" json:"backends"`
	// Formats restricts decoding; empty means all.
	Formats   []string `mapstructure:"formats" yaml:"formats" json:"formats"`
	TryHarder bool     `mapstructure:"try_harder" yaml:"try_harder" json:"try_harder"`
	// Workers bounds how many files are decoded at once.
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// InputConfig controls how input paths are read.
type InputConfig struct {
	AutoOrient bool `mapstructure:"auto_orient" yaml:"auto_orient" json:"auto_orient"`
	Recursive  bool `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
}

// PDFConfig contains PDF input settings.
type PDFConfig struct {
	Page     int    `mapstructure:"page" yaml:"page" json:"page"`
	Password string `mapstructure:"password" yaml:"password,omitempty" json:"password,omitempty"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	Copy   bool   `mapstructure:"copy" yaml:"copy" json:"copy"`
}

// WebcamConfig contains live capture settings.
type WebcamConfig struct {
	Device int    `mapstructure:"device" yaml:"device" json:"device"`
	Window bool   `mapstructure:"window" yaml:"window" json:"window"`
	Title  string `mapstructure:"title" yaml:"title" json:"title"`
}

// MetricsConfig controls the run metrics textfile.
type MetricsConfig struct {
	File string `mapstructure:"file" yaml:"file,omitempty" json:"file,omitempty"`
}
