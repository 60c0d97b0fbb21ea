package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyUserID       = errors.New("user ID is required")
	ErrEmptyResourceName = errors.New("resource name is required")
	ErrEmptyDeviceID     = errors.New("device ID is required")
	ErrEmptyPayload      = errors.New("payload is required")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrNegativeVersion   = errors.New("expected version cannot be negative")
)
