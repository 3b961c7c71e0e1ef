// Package reportservice builds the read-side views over the ledger: windowed
// revenue reports, CSV and JSON exports, and full backup/restore.
package reportservice

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/pkg/currencypkg"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
)

// Users provides the account access needed by the report service.
type Users interface {
	List(ctx context.Context) ([]domain.User, error)
}

// Ledger provides the transaction access needed by the report service.
type Ledger interface {
	List(ctx context.Context) ([]domain.Transaction, error)
	ListSince(ctx context.Context, since time.Time) ([]domain.Transaction, error)
}

// Backups provides backup blob persistence.
type Backups interface {
	Save(ctx context.Context, b domain.Backup) error
	Get(ctx context.Context) (domain.Backup, error)
	Restore(ctx context.Context, users []domain.User, transactions []domain.Transaction) error
}

// Service facilitates report service layer logic.
type Service struct {
	users   Users
	ledger  Ledger
	backups Backups
}

func New(users Users, ledger Ledger, backups Backups) *Service {
	return &Service{users: users, ledger: ledger, backups: backups}
}

const backupVersion = "1.0.0"

// csvHeader is the fixed export column layout.
var csvHeader = []string{"Date", "User", "Product", "Amount", "Currency", "Status"}

// windowStart maps a report window to its inclusive lower bound: daily
// covers since local midnight, weekly the last 7 days, monthly the last 30.
func windowStart(w domain.ReportWindow, now time.Time) time.Time {
	switch w {
	case domain.WindowDaily:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case domain.WindowWeekly:
		return now.AddDate(0, 0, -7)
	default:
		return now.AddDate(0, 0, -30)
	}
}

// Report aggregates the ledger over the window. Revenue sums only completed
// transactions, converted to USD at the fixed exchange rates.
func (s *Service) Report(ctx context.Context, window string) (domain.Report, error) {
	w, err := domain.ParseReportWindow(window)
	if err != nil {
		return domain.Report{}, err
	}

	now := time.Now()
	from := windowStart(w, now)

	txs, err := s.ledger.ListSince(ctx, from)
	if err != nil {
		return domain.Report{}, err
	}

	revenue := decimal.Zero
	for _, t := range txs {
		if t.Status != domain.PaymentCompleted {
			continue
		}

		revenue = revenue.Add(currencypkg.ToUSD(t.Amount, t.Currency))
	}
	revenue = revenue.Round(2)

	title := strings.ToUpper(window[:1]) + window[1:] + " Report"

	return domain.Report{
		Title:             title,
		Window:            w,
		From:              from,
		To:                now,
		TotalTransactions: len(txs),
		TotalRevenue:      revenue,
		Currency:          currencypkg.USD,
		Transactions:      txs,
		Summary:           fmt.Sprintf("%d transactions, %s USD total revenue", len(txs), revenue.StringFixed(2)),
	}, nil
}

// ExportCSV renders the windowed report as CSV. Accounts deleted since a
// transaction was recorded show up as "N/A".
func (s *Service) ExportCSV(ctx context.Context, window string) ([]byte, error) {
	l := zerolog.Ctx(ctx)

	report, err := s.Report(ctx, window)
	if err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		l.Error().Err(err).Msg("reportservice: ExportCSV")
		return nil, errorspkg.ErrInternal
	}

	for _, t := range report.Transactions {
		username, ok := names[t.AccountID]
		if !ok {
			username = "N/A"
		}

		record := []string{
			t.Date.Format("2006-01-02"),
			username,
			t.Details.ProductName,
			t.Amount.String(),
			t.Currency,
			t.Status,
		}

		if err := w.Write(record); err != nil {
			l.Error().Err(err).Msg("reportservice: ExportCSV")
			return nil, errorspkg.ErrInternal
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		l.Error().Err(err).Msg("reportservice: ExportCSV")
		return nil, errorspkg.ErrInternal
	}

	return buf.Bytes(), nil
}

// ExportJSON returns the full-data export payload.
func (s *Service) ExportJSON(ctx context.Context) (domain.Export, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return domain.Export{}, err
	}

	txs, err := s.ledger.List(ctx)
	if err != nil {
		return domain.Export{}, err
	}

	return domain.Export{
		Users:        users,
		Transactions: txs,
		ExportDate:   time.Now(),
		System:       "Matrix System",
	}, nil
}

// Backup snapshots all users and transactions into the backup blob.
func (s *Service) Backup(ctx context.Context) (domain.Backup, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return domain.Backup{}, err
	}

	txs, err := s.ledger.List(ctx)
	if err != nil {
		return domain.Backup{}, err
	}

	b := domain.Backup{
		Users:        users,
		Transactions: txs,
		BackupDate:   time.Now(),
		Version:      backupVersion,
	}

	if err := s.backups.Save(ctx, b); err != nil {
		return domain.Backup{}, err
	}

	return b, nil
}

// Restore replaces the live data set with the stored backup. It fails with
// ErrNoBackup when no backup has been taken.
func (s *Service) Restore(ctx context.Context) (domain.Backup, error) {
	b, err := s.backups.Get(ctx)
	if err != nil {
		return domain.Backup{}, err
	}

	if err := s.backups.Restore(ctx, b.Users, b.Transactions); err != nil {
		return domain.Backup{}, err
	}

	return b, nil
}

// RestoreFrom replaces the live data set with an uploaded export payload, so
// a file produced by ExportJSON round-trips back in. A payload without
// accounts is rejected before anything is touched.
func (s *Service) RestoreFrom(ctx context.Context, users []domain.User, transactions []domain.Transaction) error {
	if len(users) == 0 {
		return domain.ErrInvalidImport
	}

	return s.backups.Restore(ctx, users, transactions)
}
