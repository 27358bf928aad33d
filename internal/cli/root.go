package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/outliner/internal/config"
	"github.com/roach88/outliner/internal/docstore"
	"github.com/roach88/outliner/internal/registry"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose      bool
	Format       string // "json" | "text"
	ConfigPath   string
	DataDir      string
	RegistryPath string
	LogLevel     string

	// Env is the environment config.Load reads. Nil means the process
	// environment.
	Env map[string]string

	// StoreOptions and RegistryOptions are passed to every store and
	// registry the command opens (for testing).
	StoreOptions    []docstore.Option
	RegistryOptions []registry.Option

	// Config and Logger are set before any subcommand runs.
	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the outliner CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outliner",
		Short: "Outliner - block-structured notes on SQLite",
		Long: `Manage outliner databases: pages of nested blocks stored in one SQLite
file per database, with a full-text index kept in step with every write.

A system registry tracks the databases under the data directory.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (.yaml, .yml or .json)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding the database files")
	cmd.PersistentFlags().StringVar(&opts.RegistryPath, "registry", "", "path to the system registry database")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewDBCommand(opts))
	cmd.AddCommand(NewPageCommand(opts))
	cmd.AddCommand(NewBlockCommand(opts))
	cmd.AddCommand(NewWorkspaceCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewReindexCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// setup loads the configuration and installs the logger.
func (opts *RootOptions) setup(cmd *cobra.Command) error {
	env := opts.Env
	if env == nil {
		env = environ()
	}
	cfg, err := config.Load(config.LoadInput{
		ConfigPath: opts.ConfigPath,
		Env:        env,
		Overrides: config.Overrides{
			DataDir:      opts.DataDir,
			RegistryPath: opts.RegistryPath,
			LogLevel:     opts.LogLevel,
		},
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	opts.Config = cfg

	level := cfg.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	opts.Logger = slog.New(handler)
	opts.Logger.Debug("config loaded",
		"source", cfg.Source,
		"data_dir", cfg.DataDir,
		"registry", cfg.RegistryPath,
	)
	return nil
}

// formatter returns the output formatter for cmd.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
