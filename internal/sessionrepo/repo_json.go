// Package sessionrepo manages repository layer of the single client session.
package sessionrepo

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/storage"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
)

// RepoJSON facilitates session repository layer logic over the blob store.
type RepoJSON struct {
	store *storage.Store
}

// NewRepoJSON returns session RepoJSON.
func NewRepoJSON(store *storage.Store) *RepoJSON {
	return &RepoJSON{store: store}
}

// Save persists the session, overwriting any prior one.
func (r *RepoJSON) Save(ctx context.Context, session domain.Session) error {
	l := zerolog.Ctx(ctx)

	err := r.store.Update(func(snap *storage.Snapshot) error {
		snap.Session = &session
		return nil
	})

	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// Get returns the persisted session, if any.
func (r *RepoJSON) Get(ctx context.Context) (domain.Session, error) {
	var session domain.Session

	err := r.store.View(func(snap *storage.Snapshot) error {
		if snap.Session == nil {
			return domain.ErrNoSession
		}

		session = *snap.Session

		return nil
	})

	return session, err
}

// Clear removes the persisted session.
func (r *RepoJSON) Clear(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	err := r.store.Update(func(snap *storage.Snapshot) error {
		snap.Session = nil
		return nil
	})

	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
