package models

import (
	"bytes"
	"fmt"
	"strconv"
)

// Balance is the token balance reported to a caller after an
// authorization decision. It is a tagged value: either a concrete
// metered amount, or "unlimited" for identities whose subscription
// bypasses metering entirely. A magic numeric sentinel (0 or -1)
// is never used on the wire or in code.
type Balance struct {
	// Unlimited marks identities that are not metered at all.
	Unlimited bool

	// Tokens is the remaining metered balance. Meaningless when
	// Unlimited is true.
	Tokens int64
}

// Metered returns a Balance carrying a concrete token amount.
func Metered(tokens int64) Balance {
	return Balance{Tokens: tokens}
}

// UnlimitedBalance returns the Balance reported for identities whose
// subscription bypasses metering.
func UnlimitedBalance() Balance {
	return Balance{Unlimited: true}
}

// String renders the balance for logs and CLI output.
func (b Balance) String() string {
	if b.Unlimited {
		return "unlimited"
	}
	return strconv.FormatInt(b.Tokens, 10)
}

// MarshalJSON encodes a metered balance as a JSON number and an
// unmetered one as the JSON string "unlimited".
func (b Balance) MarshalJSON() ([]byte, error) {
	if b.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.FormatInt(b.Tokens, 10)), nil
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (b *Balance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"unlimited"`)) {
		*b = UnlimitedBalance()
		return nil
	}

	tokens, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("balance must be a number or \"unlimited\": %w", err)
	}

	*b = Metered(tokens)
	return nil
}
