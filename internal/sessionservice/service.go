// Package sessionservice manages the single authenticated session of the
// client context.
package sessionservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/matrix-system/matrix-pay/internal/domain"
)

// Repo provides data access layer interface needed by session service layer.
type Repo interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) error
}

// UserGetter resolves the account a session points back to.
type UserGetter interface {
	Get(ctx context.Context, id string) (domain.User, error)
}

// Service facilitates session service layer logic. There is at most one
// active session; a new login overwrites the previous one.
type Service struct {
	repo  Repo
	users UserGetter
}

// New returns the session service. A persisted session is restored when the
// referenced account still exists and is discarded otherwise.
func New(ctx context.Context, sr Repo, users UserGetter) (*Service, error) {
	l := zerolog.Ctx(ctx)

	s := &Service{repo: sr, users: users}

	session, err := sr.Get(ctx)
	if err != nil {
		if err == domain.ErrNoSession {
			return s, nil
		}

		return nil, err
	}

	if _, err := users.Get(ctx, session.AccountID); err != nil {
		// Only a session pointing at a deleted account is stale. Any
		// other lookup failure keeps the session and surfaces the error.
		if err != domain.ErrUserNotFound {
			return nil, err
		}

		l.Info().Str("account_id", session.AccountID).Msg("dropping stale session")

		if err := sr.Clear(ctx); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// LogIn creates a session for the account, replacing any prior session.
func (s *Service) LogIn(ctx context.Context, user domain.User) (domain.Session, error) {
	session := domain.Session{
		AccountID: user.ID,
		Username:  user.Username,
		Role:      user.Role,
		LoginTime: time.Now(),
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}

	return session, nil
}

// LogOut destroys the active session. Logging out with no session is not an
// error.
func (s *Service) LogOut(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

// Current returns the account of the active session.
func (s *Service) Current(ctx context.Context) (domain.User, error) {
	session, err := s.repo.Get(ctx)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.Get(ctx, session.AccountID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			// The account has been removed since login.
			_ = s.repo.Clear(ctx)
			return domain.User{}, domain.ErrNoSession
		}

		return domain.User{}, err
	}

	return user, nil
}

// CurrentSession returns the active session record.
func (s *Service) CurrentSession(ctx context.Context) (domain.Session, error) {
	return s.repo.Get(ctx)
}
