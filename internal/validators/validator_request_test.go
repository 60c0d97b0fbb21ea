package validators

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tacoworks/tollgate/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func int64Ptr(v int64) *int64 { return &v }

func validGrantRequest() models.GrantRequest {
	return models.GrantRequest{
		UserID:          "user-1",
		Amount:          100,
		Description:     "token purchase",
		StripePaymentID: "pi_123",
	}
}

func validSyncWriteRequest() models.SyncWriteRequest {
	return models.SyncWriteRequest{
		Data:     json.RawMessage(`{"entries":[]}`),
		DeviceID: "device-1",
	}
}

// ---------------------------------------------------------------------------
// TestNewRequestValidator
// ---------------------------------------------------------------------------

func TestNewRequestValidator(t *testing.T) {
	v := NewRequestValidator()
	require.NotNil(t, v)
}

// ---------------------------------------------------------------------------
// TestValidate_Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		err := v.Validate(ctx, "a string")
		require.ErrorIs(t, err, ErrUnsupportedType)
	})

	t.Run("GrantRequest value", func(t *testing.T) {
		require.NoError(t, v.Validate(ctx, validGrantRequest()))
	})

	t.Run("GrantRequest pointer", func(t *testing.T) {
		r := validGrantRequest()
		require.NoError(t, v.Validate(ctx, &r))
	})

	t.Run("AuthorizeRequest value", func(t *testing.T) {
		require.NoError(t, v.Validate(ctx, models.AuthorizeRequest{ResourceName: "tenure_mutation"}))
	})

	t.Run("AuthorizeRequest pointer", func(t *testing.T) {
		r := models.AuthorizeRequest{ResourceName: "tenure_mutation"}
		require.NoError(t, v.Validate(ctx, &r))
	})

	t.Run("SyncWriteRequest value", func(t *testing.T) {
		require.NoError(t, v.Validate(ctx, validSyncWriteRequest()))
	})

	t.Run("SyncWriteRequest pointer", func(t *testing.T) {
		r := validSyncWriteRequest()
		require.NoError(t, v.Validate(ctx, &r))
	})
}

// ---------------------------------------------------------------------------
// TestValidate_GrantRequest
// ---------------------------------------------------------------------------

func TestValidate_GrantRequest(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	t.Run("empty user id", func(t *testing.T) {
		r := validGrantRequest()
		r.UserID = ""
		require.ErrorIs(t, v.Validate(ctx, r), ErrEmptyUserID)
	})

	t.Run("zero amount", func(t *testing.T) {
		r := validGrantRequest()
		r.Amount = 0
		require.ErrorIs(t, v.Validate(ctx, r), ErrNonPositiveAmount)
	})

	t.Run("negative amount", func(t *testing.T) {
		r := validGrantRequest()
		r.Amount = -5
		require.ErrorIs(t, v.Validate(ctx, r), ErrNonPositiveAmount)
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		r := models.GrantRequest{UserID: "user-1", Amount: 1}
		require.NoError(t, v.Validate(ctx, r))
	})

	t.Run("field scoping skips unrequested checks", func(t *testing.T) {
		r := validGrantRequest()
		r.Amount = 0
		require.NoError(t, v.Validate(ctx, r, FieldUserID))
	})

	t.Run("unknown field", func(t *testing.T) {
		require.ErrorIs(t, v.Validate(ctx, validGrantRequest(), "balance"), ErrUnknownField)
	})
}

// ---------------------------------------------------------------------------
// TestValidate_AuthorizeRequest
// ---------------------------------------------------------------------------

func TestValidate_AuthorizeRequest(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	t.Run("empty resource name", func(t *testing.T) {
		require.ErrorIs(t, v.Validate(ctx, models.AuthorizeRequest{}), ErrEmptyResourceName)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := models.AuthorizeRequest{ResourceName: "tenure_mutation"}
		require.ErrorIs(t, v.Validate(ctx, r, "token_cost"), ErrUnknownField)
	})
}

// ---------------------------------------------------------------------------
// TestValidate_SyncWriteRequest
// ---------------------------------------------------------------------------

func TestValidate_SyncWriteRequest(t *testing.T) {
	v := NewRequestValidator()
	ctx := context.Background()

	t.Run("empty payload", func(t *testing.T) {
		r := validSyncWriteRequest()
		r.Data = nil
		require.ErrorIs(t, v.Validate(ctx, r), ErrEmptyPayload)
	})

	t.Run("empty device id", func(t *testing.T) {
		r := validSyncWriteRequest()
		r.DeviceID = ""
		require.ErrorIs(t, v.Validate(ctx, r), ErrEmptyDeviceID)
	})

	t.Run("negative expected version", func(t *testing.T) {
		r := validSyncWriteRequest()
		r.ExpectedVersion = int64Ptr(-1)
		require.ErrorIs(t, v.Validate(ctx, r), ErrNegativeVersion)
	})

	t.Run("zero expected version claims a first write", func(t *testing.T) {
		r := validSyncWriteRequest()
		r.ExpectedVersion = int64Ptr(0)
		require.NoError(t, v.Validate(ctx, r))
	})

	t.Run("absent expected version is a blind write", func(t *testing.T) {
		require.NoError(t, v.Validate(ctx, validSyncWriteRequest()))
	})

	t.Run("field scoping skips unrequested checks", func(t *testing.T) {
		r := validSyncWriteRequest()
		r.DeviceID = ""
		require.NoError(t, v.Validate(ctx, r, FieldData))
	})
}
