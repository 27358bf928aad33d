package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "config",
		Short:         "Print the resolved configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			data := map[string]any{
				"data_dir":      cfg.DataDir,
				"registry_path": cfg.RegistryPath,
				"log_level":     cfg.LogLevel,
				"log_format":    cfg.LogFormat,
				"remove_files":  cfg.RemoveFiles,
				"lock_timeout":  cfg.LockTimeout.String(),
				"source":        cfg.Source,
			}
			return rootOpts.formatter(cmd).Success(data, func(w io.Writer) {
				source := cfg.Source
				if source == "" {
					source = "(none)"
				}
				fmt.Fprintf(w, "config file:   %s\n", source)
				fmt.Fprintf(w, "data dir:      %s\n", cfg.DataDir)
				fmt.Fprintf(w, "registry:      %s\n", cfg.RegistryPath)
				fmt.Fprintf(w, "log level:     %s\n", cfg.LogLevel)
				fmt.Fprintf(w, "log format:    %s\n", cfg.LogFormat)
				fmt.Fprintf(w, "remove files:  %t\n", cfg.RemoveFiles)
				fmt.Fprintf(w, "lock timeout:  %s\n", cfg.LockTimeout)
			})
		},
	}
	return cmd
}
