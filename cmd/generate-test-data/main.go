package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/qrlocal/internal/testutil"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir      = flag.String("out", testutil.TestDataDir, "output directory, relative to the project root")
		generatePDF = flag.Bool("pdf", true, "also wrap the URL fixture into a PDF")
		verbose     = flag.Bool("v", false, "Verbose output")
		help        = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate QR fixtures for qrlocal testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s               # Generate all fixtures into testdata/\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -pdf=false    # Skip the PDF fixture\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	root, err := testutil.ProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}
	if *verbose {
		slog.Info("Project root", "path", root)
	}

	dir := filepath.Join(root, *outDir)
	fixtures := testutil.DefaultFixtures()
	if err := testutil.WriteFixtures(dir, fixtures); err != nil {
		slog.Error("Failed to generate fixtures", "error", err)
		os.Exit(1)
	}
	slog.Info("Generated QR fixtures", "dir", dir, "count", len(fixtures))

	if *generatePDF {
		pdfPath := filepath.Join(dir, "url.pdf")
		if err := testutil.WritePDF(pdfPath, filepath.Join(dir, fixtures[0].File)); err != nil {
			slog.Error("Failed to generate PDF fixture", "error", err)
			os.Exit(1)
		}
		slog.Info("Generated PDF fixture", "path", pdfPath)
	}
}
