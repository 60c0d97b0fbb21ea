package http

import (
	"net/http"

	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// version reports the server build identity. The route is public: clients
// use it as a reachability probe before attempting authenticated calls.
func (h *Handler) version(w http.ResponseWriter, r *http.Request) {
	info := h.services.AppInfoService.GetBuildInfo(r.Context())

	_, _ = utils.WriteJSON(w, models.VersionResponse{
		Version:     info.BuildVersion(),
		BuildDate:   info.BuildDate(),
		BuildCommit: info.BuildCommit(),
	}, http.StatusOK)
}
