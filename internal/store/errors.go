package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrInsufficientFunds is returned when a deduction asks for more tokens
	// than the account holds. The concrete error is always an
	// [InsufficientFundsError] carrying the observed balance, so callers can
	// report both numbers.
	ErrInsufficientFunds = errors.New("insufficient token balance")

	// ErrDuplicateTransaction is returned when a grant carries a Stripe
	// payment id that was already recorded. The account balance is left
	// untouched, making webhook re-delivery safe.
	ErrDuplicateTransaction = errors.New("payment already recorded")

	// ErrNonPositiveAmount is returned when a grant or deduction names a
	// zero or negative token amount.
	ErrNonPositiveAmount = errors.New("token amount must be positive")

	// ErrVersionConflict is returned when an optimistic-locking check fails:
	// the version supplied by the writer does not match the current stored
	// version, meaning another device has written since the writer last
	// read. Nothing is modified.
	ErrVersionConflict = errors.New("sync version conflict occurred")

	// ErrSyncNotFound is returned when a read targets a (user, app) pair
	// that has never been written, or a history version that has been
	// pruned or never existed.
	ErrSyncNotFound = errors.New("sync document was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)

// InsufficientFundsError reports a rejected deduction together with the
// balance observed at rejection time. It matches [ErrInsufficientFunds]
// under [errors.Is].
type InsufficientFundsError struct {
	// Balance is the number of tokens the account held, 0 for a missing
	// account.
	Balance int64

	// Required is the cost the deduction asked for.
	Required int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient token balance: have %d, need %d", e.Balance, e.Required)
}

// Is makes the error match [ErrInsufficientFunds] so callers can test with
// [errors.Is] without knowing the concrete type.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
