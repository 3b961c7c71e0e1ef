// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/storage"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
)

// RepoJSON facilitates user repository layer logic over the blob store.
type RepoJSON struct {
	store *storage.Store
}

// NewRepoJSON returns user RepoJSON.
func NewRepoJSON(store *storage.Store) *RepoJSON {
	return &RepoJSON{store: store}
}

func findUser(snap *storage.Snapshot, id string) (int, bool) {
	for i := range snap.Users {
		if snap.Users[i].ID == id {
			return i, true
		}
	}

	return 0, false
}

// Uniqueness is a case-sensitive exact match; excludeID skips the record
// being edited.
func checkUnique(snap *storage.Snapshot, username, email, excludeID string) error {
	for i := range snap.Users {
		if snap.Users[i].ID == excludeID {
			continue
		}

		if username != "" && snap.Users[i].Username == username {
			return domain.ErrUsernameAlreadyExists
		}

		if email != "" && snap.Users[i].Email == email {
			return domain.ErrEmailAlreadyExists
		}
	}

	return nil
}

// Create creates the user and then returns it.
func (r *RepoJSON) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	user := domain.User{
		ID:        fmt.Sprintf("user-%s", uuid.NewString()),
		Username:  arg.Username,
		Password:  arg.Password,
		Email:     arg.Email,
		Balance:   arg.Balance.Round(2),
		Role:      arg.Role,
		CreatedAt: time.Now(),
	}

	err := r.store.Update(func(snap *storage.Snapshot) error {
		if err := checkUnique(snap, arg.Username, arg.Email, ""); err != nil {
			return err
		}

		snap.Users = append(snap.Users, user)

		return nil
	})

	if err != nil {
		switch err {
		case domain.ErrUsernameAlreadyExists, domain.ErrEmailAlreadyExists:
			return domain.User{}, err
		}

		l.Error().Err(err).Send()

		return domain.User{}, errorspkg.ErrInternal
	}

	return user, nil
}

// Get returns the user with the given id.
func (r *RepoJSON) Get(ctx context.Context, id string) (domain.User, error) {
	var user domain.User

	err := r.store.View(func(snap *storage.Snapshot) error {
		i, ok := findUser(snap, id)
		if !ok {
			return domain.ErrUserNotFound
		}

		user = snap.Users[i]

		return nil
	})

	return user, err
}

// GetByUsername returns the user with the given username.
func (r *RepoJSON) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User

	err := r.store.View(func(snap *storage.Snapshot) error {
		for i := range snap.Users {
			if snap.Users[i].Username == username {
				user = snap.Users[i]
				return nil
			}
		}

		return domain.ErrUserNotFound
	})

	return user, err
}

// List returns all users.
func (r *RepoJSON) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User

	err := r.store.View(func(snap *storage.Snapshot) error {
		users = make([]domain.User, len(snap.Users))
		copy(users, snap.Users)

		return nil
	})

	if err != nil {
		return nil, err
	}

	return users, nil
}

// Update applies an admin edit to the user, re-validating username and email
// uniqueness excluding the record being edited.
func (r *RepoJSON) Update(ctx context.Context, id string, arg domain.UpdateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var user domain.User

	err := r.store.Update(func(snap *storage.Snapshot) error {
		i, ok := findUser(snap, id)
		if !ok {
			return domain.ErrUserNotFound
		}

		var username, email string
		if arg.Username != nil {
			username = *arg.Username
		}
		if arg.Email != nil {
			email = *arg.Email
		}

		if err := checkUnique(snap, username, email, id); err != nil {
			return err
		}

		if arg.Balance != nil && arg.Balance.IsNegative() {
			return domain.ErrNegativeBalance
		}

		u := &snap.Users[i]

		if arg.Username != nil {
			u.Username = *arg.Username
		}
		if arg.Email != nil {
			u.Email = *arg.Email
		}
		if arg.Balance != nil {
			u.Balance = arg.Balance.Round(2)
		}
		if arg.Role != nil {
			u.Role = *arg.Role
		}

		now := time.Now()
		u.UpdatedAt = &now

		user = *u

		return nil
	})

	if err != nil {
		switch err {
		case domain.ErrUserNotFound, domain.ErrUsernameAlreadyExists,
			domain.ErrEmailAlreadyExists, domain.ErrNegativeBalance:
			return domain.User{}, err
		}

		l.Error().Err(err).Send()

		return domain.User{}, errorspkg.ErrInternal
	}

	return user, nil
}

// Delete removes the user with the given id. The primary administrator
// account can never be deleted.
func (r *RepoJSON) Delete(ctx context.Context, id string) error {
	l := zerolog.Ctx(ctx)

	if id == domain.PrimaryAdminID {
		return domain.ErrPrimaryAdmin
	}

	err := r.store.Update(func(snap *storage.Snapshot) error {
		i, ok := findUser(snap, id)
		if !ok {
			return domain.ErrUserNotFound
		}

		snap.Users = append(snap.Users[:i], snap.Users[i+1:]...)

		return nil
	})

	if err != nil {
		if err == domain.ErrUserNotFound {
			return err
		}

		l.Error().Err(err).Send()

		return errorspkg.ErrInternal
	}

	return nil
}

// AdjustBalance applies amount to the user's balance in the given mode and
// returns the new balance. The amount must be positive in every mode, so a
// balance can never be set or driven negative. Subtracting below zero clamps
// at zero; the result is rounded to 2 decimal places and persisted
// synchronously.
func (r *RepoJSON) AdjustBalance(ctx context.Context, id string, amount decimal.Decimal, mode domain.BalanceMode) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrNonPositiveAmount
	}

	var newBalance decimal.Decimal

	err := r.store.Update(func(snap *storage.Snapshot) error {
		i, ok := findUser(snap, id)
		if !ok {
			return domain.ErrUserNotFound
		}

		newBalance = applyBalance(snap.Users[i].Balance, amount, mode)
		snap.Users[i].Balance = newBalance

		return nil
	})

	if err != nil {
		if err == domain.ErrUserNotFound {
			return decimal.Zero, err
		}

		l.Error().Err(err).Send()

		return decimal.Zero, errorspkg.ErrInternal
	}

	return newBalance, nil
}
func applyBalance(balance, amount decimal.Decimal, mode domain.BalanceMode) decimal.Decimal {
	switch mode {
	case domain.BalanceSet:
		balance = amount
	case domain.BalanceAdd:
		balance = balance.Add(amount)
	case domain.BalanceSubtract:
		balance = balance.Sub(amount)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
	}

	return balance.Round(2)
}

// StampLastLogin records a successful login time on the user.
func (r *RepoJSON) StampLastLogin(ctx context.Context, id string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var user domain.User

	err := r.store.Update(func(snap *storage.Snapshot) error {
		i, ok := findUser(snap, id)
		if !ok {
			return domain.ErrUserNotFound
		}

		now := time.Now()
		snap.Users[i].LastLogin = &now
		user = snap.Users[i]

		return nil
	})

	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.User{}, err
		}

		l.Error().Err(err).Send()

		return domain.User{}, errorspkg.ErrInternal
	}

	return user, nil
}
