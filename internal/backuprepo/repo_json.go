// Package backuprepo persists the on-demand backup blob and applies restores.
package backuprepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/storage"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
)

// RepoJSON is the blob store backed backup repository.
type RepoJSON struct {
	store *storage.Store
}

func NewRepoJSON(store *storage.Store) *RepoJSON {
	return &RepoJSON{store: store}
}

// Save stores the backup, replacing any previous one.
func (r *RepoJSON) Save(ctx context.Context, b domain.Backup) error {
	l := zerolog.Ctx(ctx)

	err := r.store.Update(func(snap *storage.Snapshot) error {
		snap.Backup = &b
		return nil
	})
	if err != nil {
		l.Error().Err(err).Msg("backuprepo: Save")
		return errorspkg.ErrInternal
	}

	return nil
}

// Get returns the stored backup.
func (r *RepoJSON) Get(ctx context.Context) (domain.Backup, error) {
	l := zerolog.Ctx(ctx)

	var b domain.Backup

	err := r.store.View(func(snap *storage.Snapshot) error {
		if snap.Backup == nil {
			return domain.ErrNoBackup
		}

		b = *snap.Backup

		return nil
	})
	if err != nil {
		if err == domain.ErrNoBackup {
			return b, err
		}

		l.Error().Err(err).Msg("backuprepo: Get")

		return b, errorspkg.ErrInternal
	}

	return b, nil
}

// Restore replaces the live users and transactions with the given data set
// in one commit. The active session is left alone; the session layer drops
// it on next use when its account no longer exists.
func (r *RepoJSON) Restore(ctx context.Context, users []domain.User, transactions []domain.Transaction) error {
	l := zerolog.Ctx(ctx)

	err := r.store.Update(func(snap *storage.Snapshot) error {
		snap.Users = users
		snap.Transactions = transactions

		return nil
	})
	if err != nil {
		l.Error().Err(err).Msg("backuprepo: Restore")
		return errorspkg.ErrInternal
	}

	return nil
}
