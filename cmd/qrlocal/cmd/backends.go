package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/qrlocal/internal/barcode"
	"github.com/spf13/cobra"
)

func newBackendsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the decode backends in priority order",
		Long: `List the configured decode backends in the order they are tried and
whether each one is compiled into this binary. The OpenCV backend needs a
build with -tags=gocv; ZXing is always available.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for i, name := range a.cfg.Decode.Backends {
				status := "available"
				if !barcode.Available(name) {
					status = "unavailable (build with -tags=gocv)"
				}
				if _, err := fmt.Fprintf(out, "%d. %-8s %s\n", i+1, name, status); err != nil {
					return fmt.Errorf("failed to write to stdout: %w", err)
				}
			}
			return nil
		},
	}
}
