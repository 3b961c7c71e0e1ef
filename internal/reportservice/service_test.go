package reportservice

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/matrix-system/matrix-pay/internal/backuprepo"
	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/storage"
	"github.com/matrix-system/matrix-pay/internal/transactionrepo"
	"github.com/matrix-system/matrix-pay/internal/userrepo"
)

type reportFixture struct {
	service *Service
	users   *userrepo.RepoJSON
	ledger  *transactionrepo.RepoJSON
}

func setupFixture(t *testing.T) reportFixture {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	users := userrepo.NewRepoJSON(store)
	ledger := transactionrepo.NewRepoJSON(store)

	return reportFixture{
		service: New(users, ledger, backuprepo.NewRepoJSON(store)),
		users:   users,
		ledger:  ledger,
	}
}

func (f reportFixture) appendTx(t *testing.T, id, accountID, amount, currency string, date time.Time, status string) {
	t.Helper()

	err := f.ledger.Append(context.Background(), domain.Transaction{
		ID:        id,
		AccountID: accountID,
		Product:   domain.ProductBook,
		Amount:    decimal.RequireFromString(amount),
		Currency:  currency,
		Status:    status,
		Date:      date,
		Details:   domain.TransactionDetails{ProductName: "Digital Book"},
	})
	require.NoError(t, err)
}

func TestReportWindows(t *testing.T) {
	f := setupFixture(t)

	now := time.Now()
	f.appendTx(t, "TX1", "user-001", "55.98", "USD", now, domain.PaymentCompleted)
	f.appendTx(t, "TX2", "user-002", "0.05", "ETH", now.AddDate(0, 0, -3), domain.PaymentCompleted)
	f.appendTx(t, "TX3", "user-003", "100.00", "USD", now.AddDate(0, 0, -20), domain.PaymentCompleted)
	f.appendTx(t, "TX4", "user-001", "999.00", "USD", now.AddDate(0, 0, -40), domain.PaymentCompleted)
	f.appendTx(t, "TX5", "user-001", "10.00", "USD", now, domain.PaymentFailed)

	testCases := []struct {
		window      string
		wantCount   int
		wantRevenue string
	}{
		// The failed transaction counts toward volume but not revenue.
		{window: "daily", wantCount: 2, wantRevenue: "55.98"},
		// 0.05 ETH converts at the fixed 1800 USD rate.
		{window: "weekly", wantCount: 3, wantRevenue: "145.98"},
		{window: "monthly", wantCount: 4, wantRevenue: "245.98"},
	}

	for _, tc := range testCases {
		t.Run(tc.window, func(t *testing.T) {
			report, err := f.service.Report(context.Background(), tc.window)
			require.NoError(t, err)

			require.Equal(t, tc.wantCount, report.TotalTransactions)
			require.Equal(t, tc.wantRevenue, report.TotalRevenue.StringFixed(2))
			require.Equal(t, "USD", report.Currency)
			require.Len(t, report.Transactions, tc.wantCount)
		})
	}
}

func TestReportUnknownWindow(t *testing.T) {
	f := setupFixture(t)

	_, err := f.service.Report(context.Background(), "yearly")
	require.ErrorIs(t, err, domain.ErrUnknownWindow)
}

func TestExportCSV(t *testing.T) {
	f := setupFixture(t)

	now := time.Now()
	f.appendTx(t, "TX1", "user-001", "55.98", "USD", now, domain.PaymentCompleted)
	f.appendTx(t, "TX2", "user-gone", "10.00", "USD", now, domain.PaymentCompleted)

	out, err := f.service.ExportCSV(context.Background(), "daily")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Date,User,Product,Amount,Currency,Status", lines[0])
	require.Contains(t, lines[1], "neo")
	require.Contains(t, lines[1], "55.98")
	// Deleted accounts fall back to a placeholder username.
	require.Contains(t, lines[2], "N/A")
}

func TestExportJSON(t *testing.T) {
	f := setupFixture(t)

	f.appendTx(t, "TX1", "user-001", "55.98", "USD", time.Now(), domain.PaymentCompleted)

	export, err := f.service.ExportJSON(context.Background())
	require.NoError(t, err)

	require.Equal(t, "Matrix System", export.System)
	require.Len(t, export.Users, 4)
	require.Len(t, export.Transactions, 1)
	require.WithinDuration(t, time.Now(), export.ExportDate, time.Minute)
}

func TestBackupAndRestore(t *testing.T) {
	f := setupFixture(t)

	ctx := context.Background()

	f.appendTx(t, "TX1", "user-001", "55.98", "USD", time.Now(), domain.PaymentCompleted)

	backup, err := f.service.Backup(ctx)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", backup.Version)
	require.Len(t, backup.Users, 4)
	require.Len(t, backup.Transactions, 1)

	// Diverge from the backed up state.
	f.appendTx(t, "TX2", "user-002", "10.00", "USD", time.Now(), domain.PaymentCompleted)
	require.NoError(t, f.users.Delete(ctx, "user-003"))

	restored, err := f.service.Restore(ctx)
	require.NoError(t, err)
	require.Len(t, restored.Users, 4)

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)

	txs, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "TX1", txs[0].ID)
}

func TestRestoreFromExportRoundTrip(t *testing.T) {
	f := setupFixture(t)

	ctx := context.Background()

	f.appendTx(t, "TX1", "user-001", "55.98", "USD", time.Now(), domain.PaymentCompleted)

	export, err := f.service.ExportJSON(ctx)
	require.NoError(t, err)

	// Diverge from the exported state.
	f.appendTx(t, "TX2", "user-002", "10.00", "USD", time.Now(), domain.PaymentCompleted)
	require.NoError(t, f.users.Delete(ctx, "user-003"))

	require.NoError(t, f.service.RestoreFrom(ctx, export.Users, export.Transactions))

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, len(export.Users))

	txs, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "TX1", txs[0].ID)

	reExport, err := f.service.ExportJSON(ctx)
	require.NoError(t, err)
	require.Equal(t, export.Users, reExport.Users)
	require.Equal(t, export.Transactions, reExport.Transactions)
}

func TestRestoreFromEmptyPayload(t *testing.T) {
	f := setupFixture(t)

	err := f.service.RestoreFrom(context.Background(), nil, nil)
	require.ErrorIs(t, err, domain.ErrInvalidImport)

	users, err := f.users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 4)
}

func TestRestoreWithoutBackup(t *testing.T) {
	f := setupFixture(t)

	_, err := f.service.Restore(context.Background())
	require.ErrorIs(t, err, domain.ErrNoBackup)
}
