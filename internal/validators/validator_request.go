package validators

import (
	"context"

	"github.com/tacoworks/tollgate/models"
)

// Field name constants used to specify which fields should be validated.
// These constants are passed to Validate to restrict validation to a
// subset of fields (field-level scoping).
const (
	// FieldUserID targets the owner identifier of a grant request.
	FieldUserID = "user_id"

	// FieldAmount targets the token amount of a grant request.
	FieldAmount = "amount"

	// FieldResourceName targets the resource identifier of an authorize request.
	FieldResourceName = "resource_name"

	// FieldDeviceID targets the writing device identifier of a sync write.
	FieldDeviceID = "device_id"

	// FieldData targets the opaque payload of a sync write.
	FieldData = "data"

	// FieldExpectedVersion targets the optimistic lock version of a sync write.
	FieldExpectedVersion = "expected_version"
)

type RequestValidator struct {
}

func NewRequestValidator() Validator {
	return &RequestValidator{}
}

func (v *RequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.GrantRequest:
		return v.validateGrantRequest(ctx, value, fields...)
	case *models.GrantRequest:
		return v.validateGrantRequest(ctx, *value, fields...)

	case models.AuthorizeRequest:
		return v.validateAuthorizeRequest(ctx, value, fields...)
	case *models.AuthorizeRequest:
		return v.validateAuthorizeRequest(ctx, *value, fields...)

	case models.SyncWriteRequest:
		return v.validateSyncWriteRequest(ctx, value, fields...)
	case *models.SyncWriteRequest:
		return v.validateSyncWriteRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *RequestValidator) validateGrantRequest(ctx context.Context, request models.GrantRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUserID, FieldAmount}
	}

	for _, f := range fields {
		switch f {
		case FieldUserID:
			if request.UserID == "" {
				return ErrEmptyUserID
			}
		case FieldAmount:
			if request.Amount <= 0 {
				return ErrNonPositiveAmount
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RequestValidator) validateAuthorizeRequest(ctx context.Context, request models.AuthorizeRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldResourceName}
	}

	for _, f := range fields {
		switch f {
		case FieldResourceName:
			if request.ResourceName == "" {
				return ErrEmptyResourceName
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *RequestValidator) validateSyncWriteRequest(ctx context.Context, request models.SyncWriteRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldData, FieldDeviceID, FieldExpectedVersion}
	}

	for _, f := range fields {
		switch f {
		case FieldData:
			if len(request.Data) == 0 {
				return ErrEmptyPayload
			}
		case FieldDeviceID:
			if request.DeviceID == "" {
				return ErrEmptyDeviceID
			}
		case FieldExpectedVersion:
			if request.ExpectedVersion != nil && *request.ExpectedVersion < 0 {
				return ErrNegativeVersion
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
