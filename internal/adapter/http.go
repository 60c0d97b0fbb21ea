package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalizes and validates the base URL from
// cfg.BaseURL, configures the underlying HTTP client with the resolved
// base URL and request timeout, and seeds the bearer credential from
// cfg.SessionToken.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(cfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter base url: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	a := &httpServerAdapter{client: client, logger: logger}
	a.SetToken(cfg.SessionToken)

	return a, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpServerAdapter) Token() string {
	return h.token
}

// GetBalance implements [ServerAdapter]. It GETs /api/credits/balance and
// returns the decoded balance.
func (h *httpServerAdapter) GetBalance(ctx context.Context) (models.Balance, error) {
	resp, err := h.authedRequest(ctx).Get("/api/credits/balance")
	if err != nil {
		return models.Balance{}, fmt.Errorf("balance request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Balance{}, err
	}

	var body models.BalanceResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return models.Balance{}, fmt.Errorf("decode balance response: %w", err)
	}

	return body.Balance, nil
}

// GetHistory implements [ServerAdapter]. It GETs /api/credits/history with
// the optional limit and type filters and returns the decoded entries,
// newest first.
func (h *httpServerAdapter) GetHistory(ctx context.Context, limit int, txType string) ([]models.CreditTransaction, error) {
	req := h.authedRequest(ctx)
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if txType != "" {
		req.SetQueryParam("type", txType)
	}

	resp, err := req.Get("/api/credits/history")
	if err != nil {
		return nil, fmt.Errorf("history request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var body models.HistoryResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}

	return body.Transactions, nil
}

// Authorize implements [ServerAdapter]. It POSTs req to
// /api/features/authorize and returns the caller's identity and remaining
// balance.
func (h *httpServerAdapter) Authorize(ctx context.Context, req models.AuthorizeRequest) (models.AuthorizeResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/features/authorize")
	if err != nil {
		return models.AuthorizeResponse{}, fmt.Errorf("authorize request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AuthorizeResponse{}, err
	}

	var body models.AuthorizeResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return models.AuthorizeResponse{}, fmt.Errorf("decode authorize response: %w", err)
	}

	return body, nil
}

// ReadSync implements [ServerAdapter]. It GETs /api/sync/{app} and verifies
// the returned payload against the checksum in its meta before handing it
// to the caller.
func (h *httpServerAdapter) ReadSync(ctx context.Context, app string) (models.SyncDocument, error) {
	resp, err := h.authedRequest(ctx).Get(syncPath(app))
	if err != nil {
		return models.SyncDocument{}, fmt.Errorf("sync read request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncDocument{}, err
	}

	var doc models.SyncDocument
	if err = json.Unmarshal(resp.Body(), &doc); err != nil {
		return models.SyncDocument{}, fmt.Errorf("decode sync document: %w", err)
	}

	if !utils.ChecksumMatches(doc.Data, doc.Meta.Checksum) {
		h.logger.Error().
			Str("func", "httpServerAdapter.ReadSync").
			Str("app", app).
			Int64("version", doc.Meta.Version).
			Str("checksum", doc.Meta.Checksum).
			Msg("pulled payload failed its integrity check")
		return models.SyncDocument{}, ErrChecksumMismatch
	}

	return doc, nil
}

// WriteSync implements [ServerAdapter]. It POSTs the write request to
// /api/sync/{app} and returns the stored meta. The body is encoded locally
// with HTML escaping disabled, so the payload bytes the server checksums
// are exactly the bytes the caller supplied.
func (h *httpServerAdapter) WriteSync(ctx context.Context, app string, req models.SyncWriteRequest) (models.SyncMeta, error) {
	body, err := encodeBody(req)
	if err != nil {
		return models.SyncMeta{}, fmt.Errorf("encode sync write request: %w", err)
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(syncPath(app))
	if err != nil {
		return models.SyncMeta{}, fmt.Errorf("sync write request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncMeta{}, err
	}

	var writeResp models.SyncWriteResponse
	if err = json.Unmarshal(resp.Body(), &writeResp); err != nil {
		return models.SyncMeta{}, fmt.Errorf("decode sync write response: %w", err)
	}

	return writeResp.Meta, nil
}

// ReadSyncMeta implements [ServerAdapter]. It GETs /api/sync/{app}/meta
// and returns the stored meta without the payload.
func (h *httpServerAdapter) ReadSyncMeta(ctx context.Context, app string) (models.SyncMeta, error) {
	resp, err := h.authedRequest(ctx).Get(syncPath(app) + "/meta")
	if err != nil {
		return models.SyncMeta{}, fmt.Errorf("sync meta request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SyncMeta{}, err
	}

	var body models.SyncMetaResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return models.SyncMeta{}, fmt.Errorf("decode sync meta response: %w", err)
	}

	return body.Meta, nil
}

// ReadSyncSnapshot implements [ServerAdapter]. It GETs
// /api/sync/{app}/history/{version} and returns the archived payload.
func (h *httpServerAdapter) ReadSyncSnapshot(ctx context.Context, app string, version int64) (models.SnapshotResponse, error) {
	resp, err := h.authedRequest(ctx).Get(fmt.Sprintf("%s/history/%d", syncPath(app), version))
	if err != nil {
		return models.SnapshotResponse{}, fmt.Errorf("sync snapshot request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SnapshotResponse{}, err
	}

	var body models.SnapshotResponse
	if err = json.Unmarshal(resp.Body(), &body); err != nil {
		return models.SnapshotResponse{}, fmt.Errorf("decode sync snapshot response: %w", err)
	}

	return body, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func syncPath(app string) string {
	return "/api/sync/" + url.PathEscape(app)
}

// encodeBody marshals v without HTML escaping. Escaped payload bytes
// would checksum differently on the server than on the device that
// produced them.
func encodeBody(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
