package cli

import (
	"context"
	"errors"
	"io"

	"github.com/roach88/outliner/internal/model"
)

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported through the output formatter, so JSON callers
// always receive a CLIResponse.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, &RootOptions{}, args, stdout, stderr)
}

func execute(ctx context.Context, opts *RootOptions, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{
		Format:    opts.Format,
		Writer:    stdout,
		ErrWriter: stderr,
		Verbose:   opts.Verbose,
	}
	if !isValidFormat(f.Format) {
		f.Format = "text"
	}
	code := GetExitCode(err)
	if code == ExitCommandError && !isStorageError(err) {
		_ = f.Error("command_error", err.Error(), nil)
	} else {
		_ = f.Fail(err)
	}
	return code
}

func isStorageError(err error) bool {
	var e *model.Error
	return errors.As(err, &e)
}
