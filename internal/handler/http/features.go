package http

import (
	"net/http"

	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// authorizeFeature runs the composite feature authorization: credential
// check, subscription gate, and metering in one round trip. The route is
// wired outside the identify middleware because the flow owns the
// credential itself; auth failures surface as flow results, not as a
// middleware rejection.
func (h *Handler) authorizeFeature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.AuthorizeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.DeviceID != "" {
		log := logger.FromRequest(r)
		log.Debug().
			Str("resource_name", req.ResourceName).
			Str("device_id", req.DeviceID).
			Msg("feature authorization requested")
	}

	decision, err := h.services.FeatureService.Authorize(ctx, r.Header.Get("Authorization"), req.ResourceName)
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.AuthorizeResponse{
		UserID:  decision.Identity.UserID,
		Email:   decision.Identity.Email,
		Balance: decision.Balance,
	}, http.StatusOK)
}
