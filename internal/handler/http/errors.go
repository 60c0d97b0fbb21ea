package http

import "errors"

// errNoIdentity signals that a handler behind the identify middleware found
// no identity in the request context. It maps to a 401 response and points
// at a route wired outside the authenticated group.
var errNoIdentity = errors.New("no authenticated identity in request context")
