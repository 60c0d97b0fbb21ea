package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

func newTestAdapter(t *testing.T, serverURL string) *httpServerAdapter {
	t.Helper()
	cfg := config.ClientAdapter{
		BaseURL:        serverURL,
		SessionToken:   "session-token",
		RequestTimeout: 5 * time.Second,
	}

	a, err := NewHTTPServerAdapter(cfg, logger.Nop())
	require.NoError(t, err)
	return a.(*httpServerAdapter)
}

func writeErrorBody(w http.ResponseWriter, status int, body models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ── GetBalance ───────────────────────────────────────────────────────────────

func TestGetBalance_Metered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/credits/balance", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance": 70}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.GetBalance(context.Background())

	require.NoError(t, err)
	assert.False(t, got.Unlimited)
	assert.Equal(t, int64(70), got.Tokens)
}

func TestGetBalance_Unlimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balance": "unlimited"}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.GetBalance(context.Background())

	require.NoError(t, err)
	assert.True(t, got.Unlimited)
}

func TestGetBalance_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusUnauthorized, models.ErrorResponse{
			Error: "authorization required",
			Code:  "MISSING_AUTH",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.GetBalance(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "authorization required")
}

func TestGetBalance_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.GetBalance(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 503")
	assert.Contains(t, err.Error(), "upstream down")
}

// ── GetHistory ───────────────────────────────────────────────────────────────

func TestGetHistory_ForwardsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/credits/history", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "use", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.HistoryResponse{
			Transactions: []models.CreditTransaction{{ID: "tx-1", Type: models.TransactionUse, Amount: -25}},
			Length:       1,
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.GetHistory(context.Background(), 10, "use")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tx-1", got[0].ID)
}

func TestGetHistory_NoFiltersMeansNoQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transactions": [], "length": 0}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.GetHistory(context.Background(), 0, "")

	require.NoError(t, err)
	assert.Empty(t, got)
}

// ── Authorize ────────────────────────────────────────────────────────────────

func TestAuthorize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/features/authorize", r.URL.Path)

		var req models.AuthorizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "summarize", req.ResourceName)
		assert.Equal(t, "device-9", req.DeviceID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user_id": "user-1", "email": "user@example.com", "balance": 45}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.Authorize(context.Background(), models.AuthorizeRequest{ResourceName: "summarize", DeviceID: "device-9"})

	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "user@example.com", got.Email)
	assert.Equal(t, int64(45), got.Balance.Tokens)
}

func TestAuthorize_InsufficientTokens(t *testing.T) {
	balance, required := int64(5), int64(30)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusPaymentRequired, models.ErrorResponse{
			Error:    "not enough tokens for this feature",
			Code:     "INSUFFICIENT_TOKENS",
			Balance:  &balance,
			Required: &required,
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Authorize(context.Background(), models.AuthorizeRequest{ResourceName: "summarize"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientTokens)
	assert.Contains(t, err.Error(), "balance 5, required 30")
}

func TestAuthorize_SubscriptionRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusForbidden, models.ErrorResponse{
			Error:   "an active subscription is required",
			Code:    "SUBSCRIPTION_REQUIRED",
			Missing: "pro",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.Authorize(context.Background(), models.AuthorizeRequest{ResourceName: "summarize"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "missing pro")
}

// ── ReadSync ─────────────────────────────────────────────────────────────────

func TestReadSync_Success(t *testing.T) {
	payload := json.RawMessage(`{"entries":[1,2]}`)
	doc := models.SyncDocument{
		Data: payload,
		Meta: models.SyncMeta{
			Version:  3,
			DeviceID: "device-2",
			Checksum: utils.Checksum(payload),
			Size:     int64(len(payload)),
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sync/notes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.ReadSync(context.Background(), "notes")

	require.NoError(t, err)
	assert.Equal(t, payload, got.Data)
	assert.Equal(t, int64(3), got.Meta.Version)
}

func TestReadSync_ChecksumMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SyncDocument{
			Data: json.RawMessage(`{"entries":[1,2]}`),
			Meta: models.SyncMeta{Version: 3, Checksum: "0000000000000000000000000000dead"},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.ReadSync(context.Background(), "notes")

	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadSync_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusNotFound, models.ErrorResponse{
			Error: "nothing has been synced yet",
			Code:  "NOT_FOUND",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.ReadSync(context.Background(), "notes")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── WriteSync ────────────────────────────────────────────────────────────────

func TestWriteSync_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/sync/notes", r.URL.Path)

		var req models.SyncWriteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "device-1", req.DeviceID)
		require.NotNil(t, req.ExpectedVersion)
		assert.Equal(t, int64(3), *req.ExpectedVersion)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SyncWriteResponse{
			Meta: models.SyncMeta{Version: 4, DeviceID: "device-1"},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	expected := int64(3)
	meta, err := a.WriteSync(context.Background(), "notes", models.SyncWriteRequest{
		Data:            json.RawMessage(`{"entries":[1,2,3]}`),
		DeviceID:        "device-1",
		ExpectedVersion: &expected,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.Version)
}

func TestWriteSync_PayloadBytesTravelVerbatim(t *testing.T) {
	payload := json.RawMessage(`{"note":"<b>milk & eggs</b>"}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.True(t, bytes.Contains(body, payload), "payload must not be HTML-escaped in transit")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meta": {"version": 1}}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.WriteSync(context.Background(), "notes", models.SyncWriteRequest{Data: payload, DeviceID: "device-1"})

	require.NoError(t, err)
}

func TestWriteSync_Conflict(t *testing.T) {
	stored := int64(7)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusConflict, models.ErrorResponse{
			Error:   "sync version conflict",
			Code:    "VERSION_CONFLICT",
			Version: &stored,
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.WriteSync(context.Background(), "notes", models.SyncWriteRequest{
		Data:     json.RawMessage(`{}`),
		DeviceID: "device-1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Contains(t, err.Error(), "server version 7")
}

func TestWriteSync_PayloadTooLarge(t *testing.T) {
	size, max := int64(70000), int64(65536)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error: "sync payload exceeds the size limit",
			Code:  "SIZE_EXCEEDED",
			Size:  &size,
			Max:   &max,
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.WriteSync(context.Background(), "notes", models.SyncWriteRequest{
		Data:     json.RawMessage(`{}`),
		DeviceID: "device-1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Contains(t, err.Error(), "70000 bytes, max 65536")
}

// ── ReadSyncMeta ─────────────────────────────────────────────────────────────

func TestReadSyncMeta_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sync/notes/meta", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.SyncMetaResponse{
			Meta: models.SyncMeta{Version: 5, DeviceID: "device-2", Checksum: "abc", Size: 10},
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	meta, err := a.ReadSyncMeta(context.Background(), "notes")

	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Version)
	assert.Equal(t, "device-2", meta.DeviceID)
}

// ── ReadSyncSnapshot ─────────────────────────────────────────────────────────

func TestReadSyncSnapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/notes/history/2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"old": true}, "version": 2}`))
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	got, err := a.ReadSyncSnapshot(context.Background(), "notes", 2)

	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.JSONEq(t, `{"old": true}`, string(got.Data))
}

func TestReadSyncSnapshot_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErrorBody(w, http.StatusNotFound, models.ErrorResponse{
			Error: "no snapshot at that version",
			Code:  "NOT_FOUND",
		})
	}))
	defer srv.Close()

	a := newTestAdapter(t, srv.URL)
	_, err := a.ReadSyncSnapshot(context.Background(), "notes", 99)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── normalizeBaseURL ─────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid http", "http://localhost:8080", "http://localhost:8080", false},
		{"no scheme", "localhost:8080", "http://localhost:8080", false},
		{"trailing slash", "http://localhost:8080/", "http://localhost:8080", false},
		{"empty", "", "", true},
		{"no host", "http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
