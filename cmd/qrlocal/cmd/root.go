package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MeKo-Tech/qrlocal/internal/batch"
	"github.com/MeKo-Tech/qrlocal/internal/clipboard"
	"github.com/MeKo-Tech/qrlocal/internal/config"
	"github.com/MeKo-Tech/qrlocal/internal/decode"
	"github.com/MeKo-Tech/qrlocal/internal/imageio"
	"github.com/MeKo-Tech/qrlocal/internal/metrics"
	"github.com/MeKo-Tech/qrlocal/internal/report"
	"github.com/MeKo-Tech/qrlocal/internal/version"
	"github.com/MeKo-Tech/qrlocal/internal/webcam"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Replaced in tests.
var (
	newCopier  = clipboard.System
	openCamera = webcam.Open
)

// ExitError carries a process exit code out of a command. Err may be nil
// when the output already explains the outcome.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return report.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return report.ExitUsage
}

// app holds per-invocation state so every root command is independent.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	loader  *config.Loader

	ignoredConfigErr error
}

// NewRootCommand builds the command tree with a fresh configuration.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "qrlocal [paths...]",
		Short: "Decode QR codes offline from images, PDFs or a webcam",
		Long: `qrlocal decodes QR codes and barcodes locally, without any network access.

Each input is tried with the OpenCV detector first and falls back to ZXing
when OpenCV finds nothing. Results are de-duplicated and URLs are listed first.
Images (PNG, JPEG, WEBP, BMP, TIFF, GIF) and the embedded images of a PDF page
are supported; directories are expanded to the supported files they contain.

Exit codes: 0 ok, 1 usage error, 2 webcam needs OpenCV, 3 webcam unavailable,
4 at least one input had no code.

Examples:
  qrlocal ticket.png
  qrlocal scans/ --recursive --format json
  qrlocal invoice.pdf --pdf-page 2 --copy
  qrlocal --webcam`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
		RunE: a.runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $HOME, $XDG_CONFIG_HOME/qrlocal, /etc/qrlocal)")
	pf.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.Bool("debug", false, "enable verbose debug logging")
	pf.StringSlice("backend", nil, "decode backends in priority order (opencv, zxing)")
	pf.StringSlice("formats", nil, "restrict decoding to these symbologies (qr, datamatrix, ean13, ...)")

	f := rootCmd.Flags()
	f.Bool("webcam", false, "scan codes from the webcam (needs an OpenCV build)")
	f.Bool("copy", false, "copy the result to the clipboard")
	f.StringP("format", "f", "text", "output format (text, json)")
	f.BoolP("recursive", "r", false, "descend into subdirectories")
	f.IntP("workers", "j", batch.DefaultWorkers, "number of files decoded concurrently")
	f.Int("pdf-page", 1, "PDF page whose images are decoded")
	f.String("pdf-password", "", "password for encrypted PDFs")
	f.Int("device", 0, "webcam device index")
	f.Bool("no-window", false, "scan the webcam without a preview window")
	f.String("metrics-file", "", "write run metrics in Prometheus text format to this file")
	f.Bool("version", false, "print version information and exit")

	a.bindFlags(rootCmd)

	rootCmd.AddCommand(newBackendsCommand(a), newConfigCommand(a))
	return rootCmd
}

func (a *app) bindFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	f := cmd.Flags()

	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("debug", pf.Lookup("debug"))
	_ = a.v.BindPFlag("decode.backends", pf.Lookup("backend"))
	_ = a.v.BindPFlag("decode.formats", pf.Lookup("formats"))
	_ = a.v.BindPFlag("output.copy", f.Lookup("copy"))
	_ = a.v.BindPFlag("output.format", f.Lookup("format"))
	_ = a.v.BindPFlag("input.recursive", f.Lookup("recursive"))
	_ = a.v.BindPFlag("decode.workers", f.Lookup("workers"))
	_ = a.v.BindPFlag("pdf.page", f.Lookup("pdf-page"))
	_ = a.v.BindPFlag("pdf.password", f.Lookup("pdf-password"))
	_ = a.v.BindPFlag("webcam.device", f.Lookup("device"))
	_ = a.v.BindPFlag("metrics.file", f.Lookup("metrics-file"))
}

// lenientConfigAnnotation marks commands that must run even when the
// configuration on disk is unreadable or invalid.
const lenientConfigAnnotation = "qrlocal/lenient-config"

// initConfig loads configuration and installs the logger. Logs go to
// stderr so stdout carries nothing but results.
func (a *app) initConfig(cmd *cobra.Command) error {
	a.loader = config.NewLoaderWithViper(a.v)
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return &ExitError{Code: report.ExitUsage, Err: fmt.Errorf("error loading configuration: %w", err)}
	}
	if noWindow, _ := cmd.Flags().GetBool("no-window"); noWindow {
		cfg.Webcam.Window = false
	}
	a.cfg = cfg

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	if a.ignoredConfigErr != nil {
		slog.Warn("Ignoring unusable configuration", "command", cmd.Name(), "error", a.ignoredConfigErr)
	}
	slog.Debug("Configuration loaded", "file", a.loader.GetConfigFileUsed())
	return nil
}

// loadConfig validates the configuration unless cmd carries the lenient
// annotation. Lenient commands fall back to defaults and keep the error in
// a.ignoredConfigErr.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, lenient := cmd.Annotations[lenientConfigAnnotation]; !lenient {
		return a.loader.LoadWithFile(a.cfgFile)
	}
	cfg, err := a.loader.LoadWithoutValidation(a.cfgFile)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		a.ignoredConfigErr = err
		def := config.DefaultConfig()
		return &def, nil
	}
	return cfg, nil
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "qrlocal version %s\n", version.String())
		return err
	}

	useWebcam, _ := cmd.Flags().GetBool("webcam")
	if len(args) == 0 && !useWebcam {
		_ = cmd.Help()
		return &ExitError{Code: report.ExitUsage}
	}

	rec := metrics.New()
	defer a.writeMetrics(rec)

	if useWebcam {
		return a.runWebcam(cmd, rec)
	}
	return a.runFiles(cmd, args, rec)
}

func (a *app) runFiles(cmd *cobra.Command, args []string, rec *metrics.Recorder) error {
	ctx := cmd.Context()
	cfg := a.cfg

	opts, err := cfg.ToBarcodeOptions()
	if err != nil {
		return err
	}
	dec, err := decode.NewBuilder().
		WithBackends(cfg.Decode.Backends...).
		WithFormats(opts.Formats...).
		WithTryHarder(opts.TryHarder).
		WithLoadOptions(cfg.ToLoadOptions()).
		WithMetrics(rec).
		Build()
	if err != nil {
		return err
	}

	inputs, err := imageio.Expand(args, cfg.Input.Recursive)
	if err != nil {
		return err
	}

	w := &report.Writer{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr(), Format: cfg.Output.Format}
	if cfg.Output.Copy {
		w.Copier = newCopier()
	}
	if err := w.Missing(inputs.Missing); err != nil {
		return err
	}
	for range inputs.Missing {
		rec.File(metrics.OutcomeMissing, 0)
	}

	res, err := batch.Process(ctx, dec, inputs.Files, cfg.Decode.Workers, func(o decode.Outcome) {
		if o.Found() {
			rec.File(metrics.OutcomeDecoded, len(o.Texts))
		} else {
			rec.File(metrics.OutcomeNoCode, 0)
		}
	})
	if err != nil {
		return err
	}

	code, err := w.Write(res.Outcomes)
	if err != nil {
		return err
	}
	if code != report.ExitOK {
		return &ExitError{Code: code}
	}
	return nil
}

func (a *app) runWebcam(cmd *cobra.Command, rec *metrics.Recorder) error {
	session, err := openCamera(a.cfg.ToWebcamConfig())
	if err != nil {
		if errors.Is(err, webcam.ErrUnavailable) {
			return &ExitError{Code: report.ExitNoOpenCV, Err: err}
		}
		return &ExitError{Code: report.ExitCameraError, Err: err}
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Debug("Closing webcam session failed", "error", err)
		}
	}()

	s := &webcam.Scanner{
		Device:   session.Device,
		Detector: session.Detector,
		Display:  session.Display,
		Out:      cmd.OutOrStdout(),
		Metrics:  rec,
	}
	if a.cfg.Output.Copy {
		s.Copier = newCopier()
	}
	return s.Run(cmd.Context())
}

func (a *app) writeMetrics(rec *metrics.Recorder) {
	if a.cfg == nil || a.cfg.Metrics.File == "" {
		return
	}
	if err := rec.WriteTextfile(a.cfg.Metrics.File); err != nil {
		slog.Warn("Failed to write metrics file", "path", a.cfg.Metrics.File, "error", err)
	}
}

// Execute runs the root command against os.Args and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, NewRootCommand(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return report.ExitOK
	}
	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(stderr, "Interrupted")
		return report.ExitUsage
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return ExitCode(err)
}
