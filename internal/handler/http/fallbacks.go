package http

import (
	"net/http"

	"github.com/tacoworks/tollgate/internal/app"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// notFound answers requests for paths outside the API surface with the
// uniform JSON failure body instead of chi's plain-text default.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSONError(w, http.StatusNotFound, models.ErrorResponse{
		Error: app.MsgNotFound,
		Code:  app.CodeNotFound,
	})
}

// methodNotAllowed overrides chi's 405 default. The router invokes it when
// a path matched but the method did not; answering 404 keeps unsupported
// methods indistinguishable from unknown paths.
func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSONError(w, http.StatusNotFound, models.ErrorResponse{
		Error: app.MsgNotFound,
		Code:  app.CodeNotFound,
	})
}
