// Package client implements the headless CLI runtime.
//
// It wires the server adapter, the local sync state file, and the watch
// worker into a single command dispatcher. Each invocation executes one
// command (balance, history, authorize, push, pull, meta, snapshot) and
// exits; watch blocks and keeps polling until interrupted.
package client
