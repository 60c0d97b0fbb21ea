package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tacoworks/tollgate/internal/app"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// requireSyncSubscription gates the per-app sync routes. It runs behind
// identify, reads the {app} route parameter, and rejects callers whose
// subscriptions do not cover syncing that app. The refusal names the
// per-app product that would unlock access.
func (h *Handler) requireSyncSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := utils.GetIdentityFromContext(r.Context())
		if !ok {
			respondError(w, r, errNoIdentity)
			return
		}

		appName := chi.URLParam(r, "app")
		if !h.services.AuthService.HasAppSyncSubscription(identity.Subscriptions, appName) {
			log := logger.FromRequest(r)
			log.Info().
				Str("user_id", identity.UserID).
				Str("app", appName).
				Msg("sync refused: no covering subscription")

			_, _ = utils.WriteJSONError(w, http.StatusForbidden, models.ErrorResponse{
				Error:   app.MsgSubscriptionRequired,
				Code:    app.CodeSubscriptionRequired,
				Missing: models.ProductSyncPrefix + appName,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
