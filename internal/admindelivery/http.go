// Package admindelivery manages the delivery layer of the administration
// console: account management, statistics, reports, export and backup.
package admindelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
	"github.com/matrix-system/matrix-pay/pkg/web"
)

// Users provides the account service interface needed by the admin console.
//
//go:generate mockgen -source http.go -destination http_mock.go -package admindelivery
type Users interface {
	CreateWithRole(ctx context.Context, arg domain.CreateUserParams) (domain.UserWithoutPassword, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, arg domain.UpdateUserParams) (domain.UserWithoutPassword, error)
	Delete(ctx context.Context, id string) error
	AdjustBalance(ctx context.Context, id string, amount decimal.Decimal, mode domain.BalanceMode) (decimal.Decimal, error)
	Stats(ctx context.Context) (domain.UserStats, error)
}

// Reports provides the reporting service interface needed by the admin console.
type Reports interface {
	Report(ctx context.Context, window string) (domain.Report, error)
	ExportCSV(ctx context.Context, window string) ([]byte, error)
	ExportJSON(ctx context.Context) (domain.Export, error)
	Backup(ctx context.Context) (domain.Backup, error)
	Restore(ctx context.Context) (domain.Backup, error)
	RestoreFrom(ctx context.Context, users []domain.User, transactions []domain.Transaction) error
}

// Ledger counts transactions for the statistics view.
type Ledger interface {
	List(ctx context.Context) ([]domain.Transaction, error)
}

// Handler facilitates admin delivery layer logic.
type Handler struct {
	users   Users
	reports Reports
	ledger  Ledger
}

// NewHandler returns admin handler.
func NewHandler(users Users, reports Reports, ledger Ledger) *Handler {
	return &Handler{
		users:   users,
		reports: reports,
		ledger:  ledger,
	}
}

func (h *Handler) bindJSON(gctx *gin.Context, req any) bool {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	if err := gctx.ShouldBindJSON(req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorsMsg(ve)})

			return false
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return false
	}

	return true
}

func userStatus(err error) int {
	switch err {
	case domain.ErrUserNotFound:
		return http.StatusNotFound
	case domain.ErrUsernameAlreadyExists, domain.ErrEmailAlreadyExists:
		return http.StatusConflict
	case domain.ErrPrimaryAdmin:
		return http.StatusForbidden
	case domain.ErrUsernameTooShort, domain.ErrPasswordTooShort,
		domain.ErrInvalidEmail, domain.ErrNegativeBalance,
		domain.ErrNonPositiveAmount:
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func respondUserErr(gctx *gin.Context, err error) {
	status := userStatus(err)
	if status == http.StatusInternalServerError {
		err = errorspkg.ErrInternal
	}

	gctx.JSON(status, web.Error(err))
}

// ListUsers handles http request to list all accounts.
func (h *Handler) ListUsers(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	users, err := h.users.List(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	list := make([]domain.UserWithoutPassword, 0, len(users))
	for _, u := range users {
		list = append(list, userWithoutPassword(u))
	}

	res := web.Response{
		Data: struct {
			Users []domain.UserWithoutPassword `json:"users"`
		}{
			Users: list,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type createUserRequest struct {
	Username string          `json:"username" binding:"required"`
	Password string          `json:"password" binding:"required"`
	Email    string          `json:"email" binding:"required"`
	Balance  decimal.Decimal `json:"balance"`
	Role     string          `json:"role" binding:"omitempty,oneof=user admin"`
}

// CreateUser handles http request to create an account with an initial
// balance and role.
func (h *Handler) CreateUser(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createUserRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	if req.Role == "" {
		req.Role = domain.RoleUser
	}

	created, err := h.users.CreateWithRole(ctx, domain.CreateUserParams{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Balance:  req.Balance,
		Role:     req.Role,
	})
	if err != nil {
		respondUserErr(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			User domain.UserWithoutPassword `json:"user"`
		}{
			User: created,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

type updateUserRequest struct {
	Username *string          `json:"username"`
	Email    *string          `json:"email"`
	Balance  *decimal.Decimal `json:"balance"`
	Role     *string          `json:"role" binding:"omitempty"`
}

// UpdateUser handles http request to edit an account. Absent fields are left
// unchanged.
func (h *Handler) UpdateUser(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req updateUserRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	updated, err := h.users.Update(ctx, gctx.Param("id"), domain.UpdateUserParams{
		Username: req.Username,
		Email:    req.Email,
		Balance:  req.Balance,
		Role:     req.Role,
	})
	if err != nil {
		respondUserErr(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			User domain.UserWithoutPassword `json:"user"`
		}{
			User: updated,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// DeleteUser handles http request to remove an account. The primary
// administrator can never be removed.
func (h *Handler) DeleteUser(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	if err := h.users.Delete(ctx, gctx.Param("id")); err != nil {
		respondUserErr(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

type adjustBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Mode   string          `json:"mode" binding:"required,oneof=set add subtract"`
}

// AdjustBalance handles http request to set, add to or subtract from an
// account's balance.
func (h *Handler) AdjustBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req adjustBalanceRequest
	if !h.bindJSON(gctx, &req) {
		return
	}

	balance, err := h.users.AdjustBalance(ctx, gctx.Param("id"), req.Amount, domain.BalanceMode(req.Mode))
	if err != nil {
		respondUserErr(gctx, err)
		return
	}

	res := web.Response{
		Data: struct {
			Balance decimal.Decimal `json:"balance"`
		}{
			Balance: balance,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Stats handles http request for the admin dashboard statistics.
func (h *Handler) Stats(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	stats, err := h.users.Stats(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	txs, err := h.ledger.List(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}
	stats.TotalTransactions = len(txs)

	res := web.Response{
		Data: struct {
			Stats domain.UserStats `json:"stats"`
		}{
			Stats: stats,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Report handles http request for a windowed revenue report.
func (h *Handler) Report(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	report, err := h.reports.Report(ctx, gctx.Param("window"))
	if err != nil {
		if err == domain.ErrUnknownWindow {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			Report domain.Report `json:"report"`
		}{
			Report: report,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// ReportCSV handles http request for a windowed report as a CSV download.
func (h *Handler) ReportCSV(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	out, err := h.reports.ExportCSV(ctx, gctx.Param("window"))
	if err != nil {
		if err == domain.ErrUnknownWindow {
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.Header("Content-Disposition", `attachment; filename="report.csv"`)
	gctx.Data(http.StatusOK, "text/csv", out)
}

// Export handles http request for the full-data JSON export.
func (h *Handler) Export(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	export, err := h.reports.ExportJSON(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.Header("Content-Disposition", `attachment; filename="export.json"`)
	gctx.JSON(http.StatusOK, export)
}

// Backup handles http request to snapshot the current data set.
func (h *Handler) Backup(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	backup, err := h.reports.Backup(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	res := web.Response{
		Data: struct {
			BackupDate   string `json:"backupDate"`
			Version      string `json:"version"`
			Users        int    `json:"users"`
			Transactions int    `json:"transactions"`
		}{
			BackupDate:   backup.BackupDate.Format(http.TimeFormat),
			Version:      backup.Version,
			Users:        len(backup.Users),
			Transactions: len(backup.Transactions),
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type restoreRequest struct {
	Users        []domain.User        `json:"users"`
	Transactions []domain.Transaction `json:"transactions"`
}

// Restore handles http request to replace the live data set. With a request
// body it restores the uploaded export payload; without one it falls back to
// the stored backup.
func (h *Handler) Restore(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req restoreRequest

	hasBody := gctx.Request.ContentLength > 0
	if hasBody {
		if !h.bindJSON(gctx, &req) {
			return
		}
	}

	var users []domain.User
	var transactions []domain.Transaction

	if hasBody {
		if err := h.reports.RestoreFrom(ctx, req.Users, req.Transactions); err != nil {
			if err == domain.ErrInvalidImport {
				gctx.JSON(http.StatusBadRequest, web.Error(err))
				return
			}

			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

			return
		}

		users = req.Users
		transactions = req.Transactions
	} else {
		backup, err := h.reports.Restore(ctx)
		if err != nil {
			if err == domain.ErrNoBackup {
				gctx.JSON(http.StatusNotFound, web.Error(err))
				return
			}

			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

			return
		}

		users = backup.Users
		transactions = backup.Transactions
	}

	res := web.Response{
		Data: struct {
			Users        int `json:"users"`
			Transactions int `json:"transactions"`
		}{
			Users:        len(users),
			Transactions: len(transactions),
		},
	}

	gctx.JSON(http.StatusOK, res)
}

func userWithoutPassword(u domain.User) domain.UserWithoutPassword {
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
