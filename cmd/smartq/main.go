package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"smartq/internal/domain"
)

const (
	exitFailure      = 1
	exitInvalidInput = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(report(err))
	}
}

// report writes the error envelope to stderr and returns the exit code.
func report(err error) int {
	var flagErr *usageError
	if errors.As(err, &flagErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitInvalidInput
	}

	de := domain.AsDomainError(err)
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	_ = enc.Encode(de)

	if de.Code == domain.CodeInvalidInput {
		return exitInvalidInput
	}
	return exitFailure
}

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
