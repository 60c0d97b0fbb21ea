package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tacoworks/tollgate/internal/app"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// readSync returns the caller's current sync document for the app named
// in the route. The service verifies the stored checksum before the
// payload leaves the server.
func (h *Handler) readSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		respondError(w, r, errNoIdentity)
		return
	}

	doc, err := h.services.SyncService.Read(ctx, identity.UserID, chi.URLParam(r, "app"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, doc, http.StatusOK)
}

// writeSync stores a new sync document version. The expected_version
// field, when present, makes the write conditional: a stale value is
// answered with 409 and the currently stored version.
func (h *Handler) writeSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		respondError(w, r, errNoIdentity)
		return
	}

	var req models.SyncWriteRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	meta, err := h.services.SyncService.Write(ctx, identity.UserID, chi.URLParam(r, "app"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.SyncWriteResponse{Meta: meta}, http.StatusOK)
}

// readSyncMeta returns the stored meta without the payload. Clients poll
// this to decide whether a full read is worth the bandwidth.
func (h *Handler) readSyncMeta(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		respondError(w, r, errNoIdentity)
		return
	}

	meta, err := h.services.SyncService.ReadMeta(ctx, identity.UserID, chi.URLParam(r, "app"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.SyncMetaResponse{Meta: meta}, http.StatusOK)
}

// readSyncSnapshot returns one immutable history snapshot by version
// number. Snapshots let clients rescue state after a bad overwrite.
func (h *Handler) readSyncSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		respondError(w, r, errNoIdentity)
		return
	}

	rawVersion := chi.URLParam(r, "version")
	version, err := strconv.ParseInt(rawVersion, 10, 64)
	if err != nil || version <= 0 {
		log.Warn().Str("version", rawVersion).Msg("rejecting non-numeric or non-positive snapshot version")
		_, _ = utils.WriteJSONError(w, http.StatusBadRequest, models.ErrorResponse{
			Error: "version must be a positive integer",
			Code:  app.CodeInvalidRequest,
		})
		return
	}

	data, err := h.services.SyncService.ReadSnapshot(ctx, identity.UserID, chi.URLParam(r, "app"), version)
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.SnapshotResponse{Data: data, Version: version}, http.StatusOK)
}
