// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUsernameAlreadyExists indicates that the user with the given username already exists.
	ErrUsernameAlreadyExists = errors.New("username already exists")
	// ErrEmailAlreadyExists indicates that the user with the given email already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrWrongCredentials indicates a failed username/password match.
	ErrWrongCredentials = errors.New("wrong credentials")
	// ErrWrongRole indicates a login through the wrong entry point for the account's role.
	ErrWrongRole = errors.New("wrong access type for this account")
	// ErrUsernameTooShort indicates that the username is shorter than 3 characters.
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	// ErrPasswordTooShort indicates that the password is shorter than 6 characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrPrimaryAdmin indicates an attempt to delete the primary administrator account.
	ErrPrimaryAdmin = errors.New("cannot delete the primary administrator")
	// ErrNegativeBalance indicates a negative balance value where one is not allowed.
	ErrNegativeBalance = errors.New("balance cannot be negative")
	// ErrNonPositiveAmount indicates a zero or negative balance adjustment amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Roles of accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PrimaryAdminID is the identity of the seeded administrator account,
// which can never be deleted.
const PrimaryAdminID = "admin-001"

// User holds account data. Passwords are stored and compared in plain text;
// this is a simulation, not an authentication system.
type User struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Password  string          `json:"password"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	Role      string          `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	LastLogin *time.Time      `json:"lastLogin,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	Username string
	Password string
	Email    string
	Balance  decimal.Decimal
	Role     string
}

// UpdateUserParams is the input data for an admin edit of a user.
// Nil fields are left unchanged.
type UpdateUserParams struct {
	Username *string
	Email    *string
	Balance  *decimal.Decimal
	Role     *string
}

// BalanceMode selects how an amount is applied to a balance.
type BalanceMode string

// All balance adjustment modes.
const (
	BalanceSet      BalanceMode = "set"
	BalanceAdd      BalanceMode = "add"
	BalanceSubtract BalanceMode = "subtract"
)

// UserWithoutPassword is User data excluding the credential.
type UserWithoutPassword struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
	Role      string          `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
	LastLogin *time.Time      `json:"lastLogin,omitempty"`
}

// UserStats holds the admin console statistics over regular users.
type UserStats struct {
	TotalUsers        int             `json:"totalUsers"`
	ActiveUsers       int             `json:"activeUsers"`
	TotalTransactions int             `json:"totalTransactions"`
	TotalBalance      decimal.Decimal `json:"totalBalance"`
	AverageBalance    decimal.Decimal `json:"averageBalance"`
}
