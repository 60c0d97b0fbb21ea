package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/tacoworks/tollgate/internal/app"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

const internalKeyHeader = "X-Internal-Key"

// requireInternalKey guards deployment-internal endpoints. The caller must
// present the configured key in the X-Internal-Key header; anything else,
// including an unconfigured key, is answered with 403 ACCESS_DENIED.
func (h *Handler) requireInternalKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(internalKeyHeader)

		if h.internalAPIKey == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(h.internalAPIKey)) != 1 {
			log := logger.FromRequest(r)
			log.Warn().
				Str("uri", r.RequestURI).
				Msg("internal endpoint refused: wrong or missing key")

			_, _ = utils.WriteJSONError(w, http.StatusForbidden, models.ErrorResponse{
				Error: app.MsgAccessDenied,
				Code:  app.CodeAccessDenied,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
