package handler

import (
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/handler/http"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/service"
)

// Handlers bundles the transport handlers of the server. The API is
// HTTP-only, so the bundle carries a single handler, but callers keep
// going through this type so wiring stays in one place.
type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers creates the transport handlers for every configured
// listen address. At least one address must be configured.
func NewHandlers(services *service.Services, cfg *config.StructuredConfig, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.Server.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, cfg.App, logger),
	}, nil
}
