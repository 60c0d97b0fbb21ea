package http

import (
	"encoding/json"
	"net/http"

	"github.com/tacoworks/tollgate/internal/app"
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/service"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/internal/validators"
	"github.com/tacoworks/tollgate/models"
)

// Handler owns the HTTP surface of the server: route registration,
// middleware, and the request handlers themselves.
type Handler struct {
	services *service.Services

	// validator checks decoded request bodies before they reach a service.
	validator validators.Validator

	// internalAPIKey guards the internal grant endpoint. Empty means the
	// endpoint refuses every caller.
	internalAPIKey string

	logger *logger.Logger
}

func NewHandler(services *service.Services, cfg config.App, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		validator:      validators.NewRequestValidator(),
		internalAPIKey: cfg.InternalAPIKey,
		logger:         logger,
	}
}

// decodeBody decodes the JSON request body into dst and runs it through
// the request validator. On failure it writes the 400 response itself and
// reports false, so handlers can return immediately.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log := logger.FromRequest(r)
		log.Warn().Err(err).Msg("malformed request body")

		_, _ = utils.WriteJSONError(w, http.StatusBadRequest, models.ErrorResponse{
			Error: app.MsgInvalidDataProvided,
			Code:  app.CodeInvalidRequest,
		})
		return false
	}

	if err := h.validator.Validate(r.Context(), dst); err != nil {
		log := logger.FromRequest(r)
		log.Warn().Err(err).Msg("request body failed validation")

		respondError(w, r, err)
		return false
	}

	return true
}
