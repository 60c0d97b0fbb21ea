package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when the server
// configuration names no listen address, so no transport handler can be
// initialized. Treated as a fatal misconfiguration at startup.
var errNoHandlersAreCreated = errors.New("no handlers are created")
