package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/service"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/internal/validators"
	"github.com/tacoworks/tollgate/models"
)

const testInternalKey = "internal-test-key"

// ─────────────────────────────────────────────
// Service mocks
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService with overridable
// functions. The zero value validates every credential as user-1.
type mockAuthService struct {
	validateFn      func(ctx context.Context, authorization string) (models.Identity, error)
	hasCapabilityFn func(identity models.Identity, requiredProducts []string) models.Capability
	hasAppSyncFn    func(subscriptions []string, app string) bool
}

func (m *mockAuthService) Validate(ctx context.Context, authorization string) (models.Identity, error) {
	if m.validateFn != nil {
		return m.validateFn(ctx, authorization)
	}
	return models.Identity{UserID: "user-1", Email: "user@example.com", Subscriptions: []string{"pro", "sync_notes"}}, nil
}

func (m *mockAuthService) HasCapability(identity models.Identity, requiredProducts []string) models.Capability {
	if m.hasCapabilityFn != nil {
		return m.hasCapabilityFn(identity, requiredProducts)
	}
	return models.Capability{Allowed: true}
}

func (m *mockAuthService) HasAppSyncSubscription(subscriptions []string, app string) bool {
	if m.hasAppSyncFn != nil {
		return m.hasAppSyncFn(subscriptions, app)
	}
	return true
}

// mockLedgerService implements service.LedgerService.
type mockLedgerService struct {
	getBalanceFn func(ctx context.Context, userID string) (int64, error)
	deductFn     func(ctx context.Context, userID string, cost int64, reason string) (int64, error)
	grantFn      func(ctx context.Context, grant models.GrantRequest) (int64, error)
	historyFn    func(ctx context.Context, userID string, limit int, txType string) ([]models.CreditTransaction, error)
}

func (m *mockLedgerService) GetBalance(ctx context.Context, userID string) (int64, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockLedgerService) Deduct(ctx context.Context, userID string, cost int64, reason string) (int64, error) {
	if m.deductFn != nil {
		return m.deductFn(ctx, userID, cost, reason)
	}
	return 0, nil
}

func (m *mockLedgerService) Grant(ctx context.Context, grant models.GrantRequest) (int64, error) {
	if m.grantFn != nil {
		return m.grantFn(ctx, grant)
	}
	return 0, nil
}

func (m *mockLedgerService) History(ctx context.Context, userID string, limit int, txType string) ([]models.CreditTransaction, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, userID, limit, txType)
	}
	return []models.CreditTransaction{}, nil
}

// mockFeatureService implements service.FeatureService.
type mockFeatureService struct {
	authorizeFn func(ctx context.Context, authorization, resourceName string) (models.Decision, error)
}

func (m *mockFeatureService) Authorize(ctx context.Context, authorization, resourceName string) (models.Decision, error) {
	if m.authorizeFn != nil {
		return m.authorizeFn(ctx, authorization, resourceName)
	}
	return models.Decision{}, nil
}

func (m *mockFeatureService) AuthorizeTokenFeature(ctx context.Context, authorization string, request models.FeatureRequest) (models.Decision, error) {
	return models.Decision{}, nil
}

func (m *mockFeatureService) AuthorizeSubscriptionFeature(ctx context.Context, authorization string, request models.FeatureRequest) (models.Decision, error) {
	return models.Decision{}, nil
}

// mockSyncService implements service.SyncService.
type mockSyncService struct {
	readFn         func(ctx context.Context, userID, app string) (models.SyncDocument, error)
	readMetaFn     func(ctx context.Context, userID, app string) (models.SyncMeta, error)
	readSnapshotFn func(ctx context.Context, userID, app string, version int64) (json.RawMessage, error)
	writeFn        func(ctx context.Context, userID, app string, req models.SyncWriteRequest) (models.SyncMeta, error)
}

func (m *mockSyncService) Read(ctx context.Context, userID, app string) (models.SyncDocument, error) {
	if m.readFn != nil {
		return m.readFn(ctx, userID, app)
	}
	return models.SyncDocument{}, nil
}

func (m *mockSyncService) ReadMeta(ctx context.Context, userID, app string) (models.SyncMeta, error) {
	if m.readMetaFn != nil {
		return m.readMetaFn(ctx, userID, app)
	}
	return models.SyncMeta{}, nil
}

func (m *mockSyncService) ReadSnapshot(ctx context.Context, userID, app string, version int64) (json.RawMessage, error) {
	if m.readSnapshotFn != nil {
		return m.readSnapshotFn(ctx, userID, app, version)
	}
	return nil, nil
}

func (m *mockSyncService) Write(ctx context.Context, userID, app string, req models.SyncWriteRequest) (models.SyncMeta, error) {
	if m.writeFn != nil {
		return m.writeFn(ctx, userID, app, req)
	}
	return models.SyncMeta{}, nil
}

// mockAppInfoService implements service.AppInfoService.
type mockAppInfoService struct {
	buildInfo models.AppBuildInfo
}

func (m *mockAppInfoService) GetBuildInfo(_ context.Context) models.AppBuildInfo {
	return m.buildInfo
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler around the given services with the
// request validator wired in; nil service fields are fine as long as the
// exercised handler never touches them.
func newTestHandler(services *service.Services) *Handler {
	return &Handler{
		services:       services,
		validator:      validators.NewRequestValidator(),
		internalAPIKey: testInternalKey,
		logger:         logger.Nop(),
	}
}

// withIdentity attaches an authenticated identity to the request context,
// standing in for the identify middleware.
func withIdentity(r *http.Request, identity models.Identity) *http.Request {
	return r.WithContext(utils.SetIdentityToContext(r.Context(), identity))
}

// testIdentity is the identity most handler tests run as.
func testIdentity() models.Identity {
	return models.Identity{
		UserID:        "user-1",
		Email:         "user@example.com",
		Subscriptions: []string{"pro", "sync_notes"},
	}
}

// decodeErrorBody decodes the uniform JSON failure body.
func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ─────────────────────────────────────────────
// Constructor tests
// ─────────────────────────────────────────────

func TestNewHandler_SetsInternalKey(t *testing.T) {
	h := NewHandler(&service.Services{}, config.App{InternalAPIKey: "k"}, logger.Nop())

	require.NotNil(t, h)
	assert.Equal(t, "k", h.internalAPIKey)
	assert.NotNil(t, h.validator)
}

func TestNewHandler_NilServicesSafeToConstruct(t *testing.T) {
	h := NewHandler(nil, config.App{}, logger.Nop())

	require.NotNil(t, h)
	assert.Nil(t, h.services)
}

// ─────────────────────────────────────────────
// decodeBody tests
// ─────────────────────────────────────────────

func TestDecodeBody_MalformedJSON(t *testing.T) {
	h := newTestHandler(&service.Services{})

	req := httptest.NewRequest(http.MethodPost, "/api/credits/grant", strings.NewReader(`{"user_id": `))
	rec := httptest.NewRecorder()

	var dst models.GrantRequest
	ok := h.decodeBody(rec, req, &dst)

	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorBody(t, rec).Code)
}

func TestDecodeBody_ValidationFailure(t *testing.T) {
	h := newTestHandler(&service.Services{})

	req := httptest.NewRequest(http.MethodPost, "/api/credits/grant", strings.NewReader(`{"user_id": "", "amount": 10}`))
	rec := httptest.NewRecorder()

	var dst models.GrantRequest
	ok := h.decodeBody(rec, req, &dst)

	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorBody(t, rec).Code)
}

func TestDecodeBody_Success(t *testing.T) {
	h := newTestHandler(&service.Services{})

	req := httptest.NewRequest(http.MethodPost, "/api/credits/grant", strings.NewReader(`{"user_id": "user-1", "amount": 10}`))
	rec := httptest.NewRecorder()

	var dst models.GrantRequest
	ok := h.decodeBody(rec, req, &dst)

	require.True(t, ok)
	assert.Equal(t, "user-1", dst.UserID)
	assert.Equal(t, int64(10), dst.Amount)
}
