// Package server wires and runs the application's HTTP transport.
//
// It owns startup, POSIX signal handling, and graceful shutdown: on
// SIGTERM, SIGINT or SIGQUIT the listener stops accepting work and
// in-flight requests are allowed to drain before the process exits.
package server
