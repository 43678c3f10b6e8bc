package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/qrlocal/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		Long: `Print the resolved configuration as YAML. With --raw every key viper
resolved from defaults, file, environment and flags is printed as is,
including keys qrlocal does not use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.cfg.YAML()
			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				out, err = yaml.Marshal(a.loader.GetResolvedConfig())
			}
			if err != nil {
				return err
			}
			if used := a.loader.GetConfigFileUsed(); used != "" {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", used); err != nil {
					return fmt.Errorf("failed to write to stdout: %w", err)
				}
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
			return nil
		},
	}

	showCmd.Flags().Bool("raw", false, "print all resolved settings, including unknown keys")

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a default configuration file",
		Long: `Write the default configuration as YAML. The file defaults to
qrlocal.yaml in the current directory; existing files are kept unless
--force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.WriteDefaultConfigFile(filename, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", filename)
			return err
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")
	initCmd.Annotations = map[string]string{lenientConfigAnnotation: "true"}

	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "List the directories searched for qrlocal.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range config.GetConfigSearchPaths() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return fmt.Errorf("failed to write to stdout: %w", err)
				}
			}
			return nil
		},
	}

	pathsCmd.Annotations = map[string]string{lenientConfigAnnotation: "true"}

	configCmd.AddCommand(showCmd, initCmd, pathsCmd)
	return configCmd
}
