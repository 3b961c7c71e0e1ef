package userservice

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
)

// activeWindow is how far back a login still counts as active.
const activeWindow = 30 * 24 * time.Hour

// Stats aggregates the admin console statistics over regular users.
// TotalTransactions is left for the caller to fill from the ledger.
func (s *Service) Stats(ctx context.Context) (domain.UserStats, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return domain.UserStats{}, err
	}

	var stats domain.UserStats
	cutoff := time.Now().Add(-activeWindow)

	for _, u := range users {
		if u.Role != domain.RoleUser {
			continue
		}

		stats.TotalUsers++
		stats.TotalBalance = stats.TotalBalance.Add(u.Balance)

		if u.LastLogin != nil && u.LastLogin.After(cutoff) {
			stats.ActiveUsers++
		}
	}

	if stats.TotalUsers > 0 {
		stats.AverageBalance = stats.TotalBalance.
			Div(decimal.NewFromInt(int64(stats.TotalUsers))).Round(2)
	}

	return stats, nil
}
