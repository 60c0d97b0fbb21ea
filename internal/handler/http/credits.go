package http

import (
	"net/http"
	"strconv"

	"github.com/tacoworks/tollgate/internal/app"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// getBalance reports the caller's remaining token balance. All-access
// subscribers read "unlimited" without touching the ledger.
func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		respondError(w, r, errNoIdentity)
		return
	}

	if identity.HasProduct(models.ProductTacoClub) {
		_, _ = utils.WriteJSON(w, models.BalanceResponse{Balance: models.UnlimitedBalance()}, http.StatusOK)
		return
	}

	balance, err := h.services.LedgerService.GetBalance(ctx, identity.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.BalanceResponse{Balance: models.Metered(balance)}, http.StatusOK)
}

// getHistory lists the caller's ledger entries, newest first. The optional
// limit parameter caps the page size; the optional type parameter narrows
// the listing to purchases or uses.
func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	identity, ok := utils.GetIdentityFromContext(ctx)
	if !ok {
		respondError(w, r, errNoIdentity)
		return
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			log.Warn().Str("limit", raw).Msg("rejecting non-numeric or negative history limit")
			_, _ = utils.WriteJSONError(w, http.StatusBadRequest, models.ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  app.CodeInvalidRequest,
			})
			return
		}
		limit = parsed
	}

	txType := r.URL.Query().Get("type")
	switch txType {
	case "", string(models.TransactionPurchase), string(models.TransactionUse):
	default:
		log.Warn().Str("type", txType).Msg("rejecting unknown history type filter")
		_, _ = utils.WriteJSONError(w, http.StatusBadRequest, models.ErrorResponse{
			Error: "type must be purchase or use",
			Code:  app.CodeInvalidRequest,
		})
		return
	}

	transactions, err := h.services.LedgerService.History(ctx, identity.UserID, limit, txType)
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.HistoryResponse{
		Transactions: transactions,
		Length:       len(transactions),
	}, http.StatusOK)
}

// grantCredits adds purchased tokens to a user's balance. The route sits
// behind the internal key: it is called by the payment webhook processor,
// never by end-user clients. Replayed grants with an already-recorded
// Stripe payment are acknowledged with the current balance.
func (h *Handler) grantCredits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.GrantRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	balance, err := h.services.LedgerService.Grant(ctx, req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.GrantResponse{Balance: balance}, http.StatusOK)
}
