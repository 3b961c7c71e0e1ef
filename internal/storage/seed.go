package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
)

// SeedUsers returns the default data set installed on first open: the
// primary administrator and three sample users.
func SeedUsers() []domain.User {
	now := time.Now()

	return []domain.User{
		{
			ID:        domain.PrimaryAdminID,
			Username:  "admin",
			Password:  "admin123",
			Email:     "admin@matrix-system.com",
			Balance:   decimal.Zero,
			Role:      domain.RoleAdmin,
			CreatedAt: now,
		},
		{
			ID:        "user-001",
			Username:  "neo",
			Password:  "matrix123",
			Email:     "neo@matrix.com",
			Balance:   decimal.RequireFromString("150.75"),
			Role:      domain.RoleUser,
			CreatedAt: now,
		},
		{
			ID:        "user-002",
			Username:  "trinity",
			Password:  "matrix123",
			Email:     "trinity@matrix.com",
			Balance:   decimal.RequireFromString("89.50"),
			Role:      domain.RoleUser,
			CreatedAt: now,
		},
		{
			ID:        "user-003",
			Username:  "morpheus",
			Password:  "matrix123",
			Email:     "morpheus@matrix.com",
			Balance:   decimal.RequireFromString("250.00"),
			Role:      domain.RoleUser,
			CreatedAt: now,
		},
	}
}
