package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitInvalidLimit     = 3
	ExitStorageError     = 4
	ExitValidationFailed = 5
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return exitCode(cmd.ExecuteContext(ctx), stderr)
}

// usageError reports a wrong argument count or an unknown flag.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// limitError reports a limit that is not a non-negative integer.
type limitError struct {
	arg string
	err error
}

func (e *limitError) Error() string {
	return fmt.Sprintf("limit must be a non-negative integer, got %q", e.arg)
}
func (e *limitError) Unwrap() error { return e.err }

// storageError reports a failure to reach or read the artifact store.
type storageError struct{ err error }

func (e *storageError) Error() string { return e.err.Error() }
func (e *storageError) Unwrap() error { return e.err }

// errValidationFailed is returned by validate for an incomplete run.
var errValidationFailed = errors.New("validation failed")

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		uerr *usageError
		lerr *limitError
		serr *storageError
	)
	switch {
	case errors.As(err, &uerr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Usage: primes [flags] <limit>")
		fmt.Fprintln(stderr, "Example: primes 50")
		return ExitInvalidArgs
	case errors.As(err, &lerr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidLimit
	case errors.As(err, &serr):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitStorageError
	case errors.Is(err, errValidationFailed):
		return ExitValidationFailed
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
}
