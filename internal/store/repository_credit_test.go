package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/models"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

// newTestCreditDB opens a real sqlite database in a temp dir and applies all
// migrations, so the tests exercise the production SQL end to end.
func newTestCreditDB(t *testing.T) *DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "credits.db") + "?_busy_timeout=5000"
	db, err := NewConnectSQLite(context.Background(), config.DB{Driver: config.DriverSQLite, DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate())

	return db
}

func newMockCreditRepo(t *testing.T) (CreditRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storeDB := &DB{
		DB:                 db,
		driver:             config.DriverPostgres,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
	}

	return NewCreditRepository(storeDB, logger.Nop()), mock
}

// ─────────────────────────────────────────────
// Integration: real sqlite
// ─────────────────────────────────────────────

func TestCreditRepository_GrantAndDeduct(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())
	ctx := testContext()

	balance, err := repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 100, Description: "token purchase"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	balance, err = repo.Deduct(ctx, "user-1", 30, "feature:summarize")
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)

	balance, err = repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)

	// the account row reconciles with the ledger
	var lifetimePurchased, lifetimeUsed int64
	err = db.QueryRow(`SELECT lifetime_purchased, lifetime_used FROM credit_accounts WHERE user_id = $1`, "user-1").
		Scan(&lifetimePurchased, &lifetimeUsed)
	require.NoError(t, err)
	assert.Equal(t, int64(100), lifetimePurchased)
	assert.Equal(t, int64(30), lifetimeUsed)

	history, err := repo.History(ctx, "user-1", 0, "")
	require.NoError(t, err)
	require.Len(t, history, 2)

	// newest first
	assert.Equal(t, models.TransactionUse, history[0].Type)
	assert.Equal(t, int64(-30), history[0].Amount)
	assert.Equal(t, int64(70), history[0].BalanceAfter)
	assert.Equal(t, "feature:summarize", history[0].Description)

	assert.Equal(t, models.TransactionPurchase, history[1].Type)
	assert.Equal(t, int64(100), history[1].Amount)
	assert.Equal(t, int64(100), history[1].BalanceAfter)
}

func TestCreditRepository_Deduct_InsufficientFunds(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())
	ctx := testContext()

	_, err := repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 10})
	require.NoError(t, err)

	_, err = repo.Deduct(ctx, "user-1", 50, "feature:transcribe")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(10), insufficient.Balance)
	assert.Equal(t, int64(50), insufficient.Required)

	// nothing was written
	balance, err := repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	history, err := repo.History(ctx, "user-1", 0, "")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCreditRepository_Deduct_MissingAccount(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())

	_, err := repo.Deduct(testContext(), "ghost", 5, "feature:export")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(0), insufficient.Balance)
	assert.Equal(t, int64(5), insufficient.Required)
}

func TestCreditRepository_NonPositiveAmounts(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())
	ctx := testContext()

	_, err := repo.Deduct(ctx, "user-1", 0, "noop")
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = repo.Deduct(ctx, "user-1", -3, "noop")
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 0})
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestCreditRepository_Grant_DuplicateStripePayment(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())
	ctx := testContext()

	grant := models.GrantRequest{UserID: "user-1", Amount: 100, StripePaymentID: "pi_123"}

	balance, err := repo.Grant(ctx, grant)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	// webhook re-delivery: same payment id arrives again
	_, err = repo.Grant(ctx, grant)
	require.ErrorIs(t, err, ErrDuplicateTransaction)

	// the replay left no trace
	balance, err = repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	history, err := repo.History(ctx, "user-1", 0, "")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "pi_123", history[0].StripePaymentID)
}

func TestCreditRepository_Grant_DistinctPayments(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())
	ctx := testContext()

	_, err := repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 100, StripePaymentID: "pi_1"})
	require.NoError(t, err)

	balance, err := repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 50, StripePaymentID: "pi_2"})
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	// grants without a payment id never collide with each other
	_, err = repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 5, Description: "signup bonus"})
	require.NoError(t, err)

	balance, err = repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 5, Description: "signup bonus"})
	require.NoError(t, err)
	assert.Equal(t, int64(160), balance)
}

func TestCreditRepository_GetBalance_MissingAccount(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())

	balance, err := repo.GetBalance(testContext(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCreditRepository_History_FilterAndLimit(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())
	ctx := testContext()

	_, err := repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 100})
	require.NoError(t, err)
	_, err = repo.Deduct(ctx, "user-1", 25, "feature:summarize")
	require.NoError(t, err)
	_, err = repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 40})
	require.NoError(t, err)

	purchases, err := repo.History(ctx, "user-1", 0, string(models.TransactionPurchase))
	require.NoError(t, err)
	require.Len(t, purchases, 2)
	for _, entry := range purchases {
		assert.Equal(t, models.TransactionPurchase, entry.Type)
	}

	newest, err := repo.History(ctx, "user-1", 1, "")
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, int64(40), newest[0].Amount)

	// other users see nothing
	other, err := repo.History(ctx, "user-2", 0, "")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCreditRepository_Deduct_Concurrent(t *testing.T) {
	db := newTestCreditDB(t)
	repo := NewCreditRepository(db, logger.Nop())
	ctx := testContext()

	_, err := repo.Grant(ctx, models.GrantRequest{UserID: "user-1", Amount: 100})
	require.NoError(t, err)

	// two racing deducts of 60: only one can win on a balance of 100
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, deductErr := repo.Deduct(ctx, "user-1", 60, "feature:transcribe")
			results <- deductErr
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientFunds):
			rejected++
		default:
			t.Fatalf("unexpected deduct error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	balance, err := repo.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
}

// ─────────────────────────────────────────────
// Error paths: sqlmock as postgres
// ─────────────────────────────────────────────

func TestCreditRepository_Grant_PostgresDuplicate(t *testing.T) {
	repo, mock := newMockCreditRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO credit_accounts").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(100))
	mock.ExpectExec("INSERT INTO credit_transactions").
		WillReturnError(pgError(pgerrcode.UniqueViolation))
	mock.ExpectRollback()

	_, err := repo.Grant(testContext(), models.GrantRequest{UserID: "user-1", Amount: 100, StripePaymentID: "pi_123"})
	require.ErrorIs(t, err, ErrDuplicateTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditRepository_Deduct_BeginError(t *testing.T) {
	repo, mock := newMockCreditRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("db is down"))

	_, err := repo.Deduct(testContext(), "user-1", 10, "feature:summarize")
	require.ErrorIs(t, err, ErrBeginningTransaction)
}

func TestCreditRepository_Deduct_CommitError(t *testing.T) {
	repo, mock := newMockCreditRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE credit_accounts").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(70))
	mock.ExpectExec("INSERT INTO credit_transactions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	_, err := repo.Deduct(testContext(), "user-1", 30, "feature:summarize")
	require.ErrorIs(t, err, ErrCommitingTransaction)
}

func TestCreditRepository_GetBalance_QueryError(t *testing.T) {
	repo, mock := newMockCreditRepo(t)

	mock.ExpectQuery("SELECT balance").
		WillReturnError(errors.New("db network error"))

	_, err := repo.GetBalance(testContext(), "user-1")
	require.ErrorIs(t, err, ErrExecutingQuery)
}

func TestCreditRepository_History_QueryError(t *testing.T) {
	repo, mock := newMockCreditRepo(t)

	mock.ExpectQuery("SELECT id, user_id").
		WillReturnError(errors.New("db network error"))

	_, err := repo.History(testContext(), "user-1", 0, "")
	require.ErrorIs(t, err, ErrExecutingQuery)
}
