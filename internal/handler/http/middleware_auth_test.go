package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tacoworks/tollgate/internal/service"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

func executeIdentify(h *Handler, authHeader string, next http.Handler) *httptest.ResponseRecorder {
	middleware := h.identify(next)

	req := httptest.NewRequest(http.MethodGet, "/api/credits/balance", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)
	return rec
}

func TestIdentify_Success(t *testing.T) {
	want := testIdentity()
	auth := &mockAuthService{
		validateFn: func(_ context.Context, authorization string) (models.Identity, error) {
			assert.Equal(t, "Bearer token-abc", authorization)
			return want, nil
		},
	}
	h := newTestHandler(&service.Services{AuthService: auth})

	var got models.Identity
	var nextCalled bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := utils.GetIdentityFromContext(r.Context())
		require.True(t, ok, "identity must be stored in the request context")
		got = identity
		nextCalled = true
	})

	rec := executeIdentify(h, "Bearer token-abc", next)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, nextCalled)
	assert.Equal(t, want, got)
}

func TestIdentify_RejectsWithMappedStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "no credential", err: service.ErrMissingAuth, wantCode: "MISSING_AUTH"},
		{name: "invalid token", err: service.ErrInvalidToken, wantCode: "INVALID_TOKEN"},
		{name: "expired session", err: service.ErrSessionExpired, wantCode: "SESSION_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{
				validateFn: func(_ context.Context, _ string) (models.Identity, error) {
					return models.Identity{}, tt.err
				},
			}
			h := newTestHandler(&service.Services{AuthService: auth})

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run for a rejected credential")
			})

			rec := executeIdentify(h, "Bearer bad", next)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantCode, decodeErrorBody(t, rec).Code)
		})
	}
}
