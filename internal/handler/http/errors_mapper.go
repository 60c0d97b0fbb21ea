package http

import (
	"errors"
	"net/http"

	"github.com/tacoworks/tollgate/internal/app"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/service"
	"github.com/tacoworks/tollgate/internal/store"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/internal/validators"
	"github.com/tacoworks/tollgate/models"
)

var errorStatusMap = map[error]int{
	errNoIdentity: http.StatusUnauthorized,

	service.ErrMissingAuth:    http.StatusUnauthorized,
	service.ErrInvalidToken:   http.StatusUnauthorized,
	service.ErrSessionExpired: http.StatusUnauthorized,

	service.ErrSubscriptionRequired: http.StatusForbidden,
	service.ErrUnknownResource:      http.StatusNotFound,
	service.ErrUnknownApp:           http.StatusNotFound,
	service.ErrSizeExceeded:         http.StatusRequestEntityTooLarge,
	service.ErrTokenTransaction:     http.StatusInternalServerError,
	service.ErrChecksumMismatch:     http.StatusInternalServerError,

	store.ErrInsufficientFunds: http.StatusPaymentRequired,
	store.ErrNonPositiveAmount: http.StatusBadRequest,
	store.ErrVersionConflict:   http.StatusConflict,
	store.ErrSyncNotFound:      http.StatusNotFound,

	validators.ErrUnsupportedType:   http.StatusBadRequest,
	validators.ErrUnknownField:      http.StatusBadRequest,
	validators.ErrEmptyUserID:       http.StatusBadRequest,
	validators.ErrEmptyResourceName: http.StatusBadRequest,
	validators.ErrEmptyDeviceID:     http.StatusBadRequest,
	validators.ErrEmptyPayload:      http.StatusBadRequest,
	validators.ErrNonPositiveAmount: http.StatusBadRequest,
	validators.ErrNegativeVersion:   http.StatusBadRequest,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// errorBody maps a service or store error onto the uniform failure body.
// Typed errors contribute their extra fields (balance, missing product,
// size limits, stored version) so the caller can act without guessing.
func errorBody(err error) models.ErrorResponse {
	var (
		insufficient *store.InsufficientFundsError
		subscription *service.SubscriptionRequiredError
		oversized    *service.SizeExceededError
		conflict     *service.VersionConflictError
	)

	switch {
	case errors.Is(err, service.ErrMissingAuth), errors.Is(err, errNoIdentity):
		return models.ErrorResponse{Error: app.MsgMissingAuth, Code: app.CodeMissingAuth}
	case errors.Is(err, service.ErrSessionExpired):
		return models.ErrorResponse{Error: app.MsgSessionExpired, Code: app.CodeSessionExpired}
	case errors.Is(err, service.ErrInvalidToken):
		return models.ErrorResponse{Error: app.MsgInvalidToken, Code: app.CodeInvalidToken}

	case errors.As(err, &subscription):
		return models.ErrorResponse{
			Error:   app.MsgSubscriptionRequired,
			Code:    app.CodeSubscriptionRequired,
			Missing: subscription.Missing,
		}
	case errors.Is(err, service.ErrSubscriptionRequired):
		return models.ErrorResponse{Error: app.MsgSubscriptionRequired, Code: app.CodeSubscriptionRequired}

	case errors.As(err, &insufficient):
		return models.ErrorResponse{
			Error:    app.MsgInsufficientTokens,
			Code:     app.CodeInsufficientTokens,
			Balance:  &insufficient.Balance,
			Required: &insufficient.Required,
		}
	case errors.Is(err, store.ErrInsufficientFunds):
		return models.ErrorResponse{Error: app.MsgInsufficientTokens, Code: app.CodeInsufficientTokens}

	case errors.As(err, &oversized):
		return models.ErrorResponse{
			Error: app.MsgSizeExceeded,
			Code:  app.CodeSizeExceeded,
			Size:  &oversized.Size,
			Max:   &oversized.Max,
		}
	case errors.Is(err, service.ErrSizeExceeded):
		return models.ErrorResponse{Error: app.MsgSizeExceeded, Code: app.CodeSizeExceeded}

	case errors.As(err, &conflict):
		body := models.ErrorResponse{Error: app.MsgVersionConflict, Code: app.CodeVersionConflict}
		if conflict.Version > 0 {
			body.Version = &conflict.Version
		}
		return body
	case errors.Is(err, store.ErrVersionConflict):
		return models.ErrorResponse{Error: app.MsgVersionConflict, Code: app.CodeVersionConflict}

	case errors.Is(err, service.ErrTokenTransaction):
		return models.ErrorResponse{Error: app.MsgTokenTransaction, Code: app.CodeTokenTransactionError}
	case errors.Is(err, service.ErrChecksumMismatch):
		return models.ErrorResponse{Error: app.MsgChecksumMismatch, Code: app.CodeChecksumMismatch}

	case errors.Is(err, service.ErrUnknownResource),
		errors.Is(err, service.ErrUnknownApp),
		errors.Is(err, store.ErrSyncNotFound):
		return models.ErrorResponse{Error: app.MsgNotFound, Code: app.CodeNotFound}
	}

	if statusFromError(err) == http.StatusBadRequest {
		return models.ErrorResponse{Error: err.Error(), Code: app.CodeInvalidRequest}
	}

	return models.ErrorResponse{Error: app.MsgInternalServerError, Code: app.CodeInternalError}
}

// respondError writes the JSON failure body for err with the mapped status.
// Server-side failures are logged here so handlers do not repeat themselves.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		log := logger.FromRequest(r)
		log.Error().Err(err).
			Str("uri", r.RequestURI).
			Int("status", status).
			Msg("request failed")
	}

	_, _ = utils.WriteJSONError(w, status, errorBody(err))
}
