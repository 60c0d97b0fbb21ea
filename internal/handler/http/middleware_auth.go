package http

import (
	"net/http"

	"github.com/tacoworks/tollgate/internal/utils"
)

// identify is the authentication middleware of the bearer-protected routes.
//
// It hands the raw "Authorization" header to the auth service, which parses
// the bearer credential, verifies the session token, and resolves the
// caller's subscriptions. On success the resulting identity is stored in
// the request context for downstream handlers; on failure the request is
// rejected with the mapped 401 body (missing, invalid, or expired).
func (h *Handler) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, err := h.services.AuthService.Validate(ctx, r.Header.Get("Authorization"))
		if err != nil {
			respondError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.SetIdentityToContext(ctx, identity)))
	})
}
