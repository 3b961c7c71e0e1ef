// Package userservice manages business logic layer of users.
package userservice

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, arg domain.UpdateUserParams) (domain.User, error)
	Delete(ctx context.Context, id string) error
	AdjustBalance(ctx context.Context, id string, amount decimal.Decimal, mode domain.BalanceMode) (decimal.Decimal, error)
	StampLastLogin(ctx context.Context, id string) (domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New returns user service struct to manage user business logic.
func New(ur Repo) *Service {
	return &Service{repo: ur}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Balance:   u.Balance,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

func validateCredentials(username, email, password string) error {
	if len(username) < 3 {
		return domain.ErrUsernameTooShort
	}

	if len(password) < 6 {
		return domain.ErrPasswordTooShort
	}

	if !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}

	return nil
}

// Register creates a regular user account with a zero balance.
func (s *Service) Register(ctx context.Context, username, email, password string) (domain.UserWithoutPassword, error) {
	var result domain.UserWithoutPassword

	if err := validateCredentials(username, email, password); err != nil {
		return result, err
	}

	arg := domain.CreateUserParams{
		Username: username,
		Password: password,
		Email:    email,
		Balance:  decimal.Zero,
		Role:     domain.RoleUser,
	}

	user, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	return NewUserWithoutPassword(user), nil
}

// CreateWithRole creates an account from the admin console with an initial
// balance and explicit role.
func (s *Service) CreateWithRole(ctx context.Context, arg domain.CreateUserParams) (domain.UserWithoutPassword, error) {
	var result domain.UserWithoutPassword

	if err := validateCredentials(arg.Username, arg.Email, arg.Password); err != nil {
		return result, err
	}

	if arg.Balance.IsNegative() {
		return result, domain.ErrNegativeBalance
	}

	user, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	return NewUserWithoutPassword(user), nil
}

// Authenticate checks the credentials and the requested role. Login is
// role-scoped: a user cannot log in through the admin entry point and vice
// versa. On success the last login time is stamped.
func (s *Service) Authenticate(ctx context.Context, username, password, requestedRole string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.User{}, domain.ErrWrongCredentials
		}

		return domain.User{}, err
	}

	if user.Password != password {
		l.Warn().Str("username", username).Msg("failed login attempt")
		return domain.User{}, domain.ErrWrongCredentials
	}

	if user.Role != requestedRole {
		return domain.User{}, domain.ErrWrongRole
	}

	user, err = s.repo.StampLastLogin(ctx, user.ID)
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	return s.repo.Get(ctx, id)
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// Update applies an admin edit to the user.
func (s *Service) Update(ctx context.Context, id string, arg domain.UpdateUserParams) (domain.UserWithoutPassword, error) {
	user, err := s.repo.Update(ctx, id, arg)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return NewUserWithoutPassword(user), nil
}

// Delete removes the user unless it is the primary administrator.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AdjustBalance applies the amount to the user's balance in the given mode.
func (s *Service) AdjustBalance(ctx context.Context, id string, amount decimal.Decimal, mode domain.BalanceMode) (decimal.Decimal, error) {
	return s.repo.AdjustBalance(ctx, id, amount, mode)
}
