package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tacoworks/tollgate/models"
)

// mapHTTPError converts a non-2xx response into one of the package
// sentinels, wrapped around the server's error message.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	detail := errorDetail(resp)

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, detail)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrInsufficientTokens, detail)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrVersionConflict, detail)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", ErrPayloadTooLarge, detail)
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternalServerError, detail)
	default:
		return fmt.Errorf("http %d: %s", resp.StatusCode(), detail)
	}
}

// errorDetail extracts the human-readable message from the uniform
// failure body, folding in the per-kind extras when present. Falls back
// to the raw body for non-JSON responses.
func errorDetail(resp *resty.Response) string {
	var body models.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Error == "" {
		detail := strings.TrimSpace(string(resp.Body()))
		if detail == "" {
			detail = http.StatusText(resp.StatusCode())
		}
		return detail
	}

	switch {
	case body.Balance != nil && body.Required != nil:
		return fmt.Sprintf("%s (balance %d, required %d)", body.Error, *body.Balance, *body.Required)
	case body.Missing != "":
		return fmt.Sprintf("%s (missing %s)", body.Error, body.Missing)
	case body.Size != nil && body.Max != nil:
		return fmt.Sprintf("%s (%d bytes, max %d)", body.Error, *body.Size, *body.Max)
	case body.Version != nil:
		return fmt.Sprintf("%s (server version %d)", body.Error, *body.Version)
	default:
		return body.Error
	}
}
