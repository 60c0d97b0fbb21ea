package client

import "context"

// Client runs one CLI invocation.
type Client interface {
	// Run dispatches the given command-line arguments and blocks until
	// the command finishes or ctx is cancelled.
	Run(ctx context.Context, args []string) error
}
