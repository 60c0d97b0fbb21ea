package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tacoworks/tollgate/internal/service"
	"github.com/tacoworks/tollgate/models"
)

func TestVersion_ReportsBuildInfo(t *testing.T) {
	info := &mockAppInfoService{buildInfo: models.NewAppBuildInfo("1.2.3", "2026-08-25", "abc1234")}
	h := newTestHandler(&service.Services{AppInfoService: info})

	rec := httptest.NewRecorder()
	h.version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"version": "1.2.3", "build_date": "2026-08-25", "build_commit": "abc1234"}`, rec.Body.String())
}

func TestVersion_UnstampedBuildReportsNA(t *testing.T) {
	info := &mockAppInfoService{buildInfo: models.NewAppBuildInfo("", "", "")}
	h := newTestHandler(&service.Services{AppInfoService: info})

	rec := httptest.NewRecorder()
	h.version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version": "N/A", "build_date": "N/A", "build_commit": "N/A"}`, rec.Body.String())
}
