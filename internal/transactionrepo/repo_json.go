// Package transactionrepo manages repository layer of the append-only ledger.
package transactionrepo

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/storage"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
)

// RepoJSON facilitates ledger repository layer logic over the blob store.
// The ledger is append-only: there is no update or delete operation, and
// reads return copies.
type RepoJSON struct {
	store *storage.Store
}

// NewRepoJSON returns ledger RepoJSON.
func NewRepoJSON(store *storage.Store) *RepoJSON {
	return &RepoJSON{store: store}
}

func appendTransaction(snap *storage.Snapshot, t domain.Transaction) error {
	for i := range snap.Transactions {
		if snap.Transactions[i].ID == t.ID {
			return domain.ErrTransactionExists
		}
	}

	snap.Transactions = append(snap.Transactions, t)

	return nil
}

// Append adds a transaction to the ledger.
func (r *RepoJSON) Append(ctx context.Context, t domain.Transaction) error {
	l := zerolog.Ctx(ctx)

	err := r.store.Update(func(snap *storage.Snapshot) error {
		return appendTransaction(snap, t)
	})

	if err != nil {
		if err == domain.ErrTransactionExists {
			return err
		}

		l.Error().Err(err).Send()

		return errorspkg.ErrInternal
	}

	return nil
}

// Settle records a completed payment: it appends the transaction and credits
// the buyer's balance in one commit, so the ledger entry and the balance
// change are always observed together.
func (r *RepoJSON) Settle(ctx context.Context, t domain.Transaction, credit decimal.Decimal) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var newBalance decimal.Decimal

	err := r.store.Update(func(snap *storage.Snapshot) error {
		buyer := -1
		for i := range snap.Users {
			if snap.Users[i].ID == t.AccountID {
				buyer = i
				break
			}
		}
		if buyer < 0 {
			return domain.ErrUserNotFound
		}

		if err := appendTransaction(snap, t); err != nil {
			return err
		}

		newBalance = snap.Users[buyer].Balance.Add(credit).Round(2)
		snap.Users[buyer].Balance = newBalance

		return nil
	})

	if err != nil {
		switch err {
		case domain.ErrTransactionExists, domain.ErrUserNotFound:
			return decimal.Zero, err
		}

		l.Error().Err(err).Send()

		return decimal.Zero, errorspkg.ErrInternal
	}

	return newBalance, nil
}

// Query returns copies of all transactions matching the predicate,
// in append order.
func (r *RepoJSON) Query(ctx context.Context, pred func(domain.Transaction) bool) ([]domain.Transaction, error) {
	var items []domain.Transaction

	err := r.store.View(func(snap *storage.Snapshot) error {
		for i := range snap.Transactions {
			if pred(snap.Transactions[i]) {
				items = append(items, snap.Transactions[i])
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return items, nil
}

// List returns all transactions.
func (r *RepoJSON) List(ctx context.Context) ([]domain.Transaction, error) {
	return r.Query(ctx, func(domain.Transaction) bool { return true })
}

// ListByAccount returns the transactions of one account.
func (r *RepoJSON) ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	return r.Query(ctx, func(t domain.Transaction) bool { return t.AccountID == accountID })
}

// ListSince returns the transactions dated at or after the given time.
func (r *RepoJSON) ListSince(ctx context.Context, since time.Time) ([]domain.Transaction, error) {
	return r.Query(ctx, func(t domain.Transaction) bool { return !t.Date.Before(since) })
}
