package transactionrepo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/storage"
)

func testRepo(t *testing.T) (*RepoJSON, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "matrix.json"))
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })

	return NewRepoJSON(store), store
}

func makeTransaction(id string, accountID string, date time.Time) domain.Transaction {
	return domain.Transaction{
		ID:        id,
		AccountID: accountID,
		Product:   domain.ProductBook,
		Amount:    decimal.RequireFromString("55.98"),
		Currency:  "USD",
		Status:    domain.PaymentCompleted,
		Date:      date,
		Details:   domain.TransactionDetails{ProductName: `Physical Book "Matrix Code"`},
	}
}

func TestAppendAndList(t *testing.T) {
	r, _ := testRepo(t)
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		err := r.Append(ctx, makeTransaction(fmt.Sprintf("TX%d", i), "user-001", now))
		require.NoError(t, err)
	}

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "TX0", got[0].ID) // append order preserved
}

func TestAppendDuplicateID(t *testing.T) {
	r, _ := testRepo(t)
	ctx := context.Background()

	tx := makeTransaction("TX1", "user-001", time.Now())
	require.NoError(t, r.Append(ctx, tx))

	err := r.Append(ctx, tx)
	require.ErrorIs(t, err, domain.ErrTransactionExists)

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestListByAccount(t *testing.T) {
	r, _ := testRepo(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, r.Append(ctx, makeTransaction("TX1", "user-001", now)))
	require.NoError(t, r.Append(ctx, makeTransaction("TX2", "user-002", now)))
	require.NoError(t, r.Append(ctx, makeTransaction("TX3", "user-001", now)))

	got, err := r.ListByAccount(ctx, "user-001")
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = r.ListByAccount(ctx, "user-404")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestListSince(t *testing.T) {
	r, _ := testRepo(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, r.Append(ctx, makeTransaction("TXold", "user-001", now.Add(-48*time.Hour))))
	require.NoError(t, r.Append(ctx, makeTransaction("TXnew", "user-001", now)))

	got, err := r.ListSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "TXnew", got[0].ID)
}

func TestSettleAppendsAndCreditsAtomically(t *testing.T) {
	r, store := testRepo(t)
	ctx := context.Background()

	tx := makeTransaction("TX1", "user-001", time.Now())

	newBalance, err := r.Settle(ctx, tx, decimal.RequireFromString("49.99"))
	require.NoError(t, err)
	require.Equal(t, "200.74", newBalance.String()) // 150.75 seed + 49.99

	err = store.View(func(snap *storage.Snapshot) error {
		require.Len(t, snap.Transactions, 1)
		require.Equal(t, "200.74", snap.Users[1].Balance.String())
		return nil
	})
	require.NoError(t, err)
}

func TestSettleUnknownAccountLeavesLedgerUntouched(t *testing.T) {
	r, _ := testRepo(t)
	ctx := context.Background()

	tx := makeTransaction("TX1", "user-404", time.Now())

	_, err := r.Settle(ctx, tx, decimal.NewFromInt(10))
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
