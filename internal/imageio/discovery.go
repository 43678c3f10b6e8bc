package imageio

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Inputs is the result of expanding command-line arguments.
type Inputs struct {
	// Files to decode, in argument order; directory contents in lexical order.
	// A directory without supported files is kept as is so it reports as
	// having no code.
	Files []string
	// Missing lists arguments that cannot be stat'ed.
	Missing []string
}

// Expand resolves args into files. Plain files are kept as given whatever
// their extension; directories contribute their supported files, descending
// into subdirectories only when recursive is set. Any stat failure (not
// found, not a directory, permission) marks the argument missing.
func Expand(args []string, recursive bool) (Inputs, error) {
	var in Inputs
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			slog.Debug("Input not accessible", "path", arg, "error", err)
			in.Missing = append(in.Missing, arg)
			continue
		}

		if !info.IsDir() {
			in.Files = append(in.Files, arg)
			continue
		}
		files, err := discoverInDirectory(arg, recursive)
		if err != nil {
			return in, err
		}
		if len(files) == 0 {
			slog.Debug("Directory has no supported files", "path", arg, "recursive", recursive)
			in.Files = append(in.Files, arg)
			continue
		}
		in.Files = append(in.Files, files...)
	}
	return in, nil
}

// discoverInDirectory walks dir collecting supported files.
func discoverInDirectory(dir string, recursive bool) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if IsSupported(path) {
			files = append(files, path)
		}
		return nil
	}

	return files, filepath.Walk(dir, walkFn)
}
