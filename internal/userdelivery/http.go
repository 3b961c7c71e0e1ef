// Package userdelivery manages the delivery layer of users and their sessions.
package userdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/middleware"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
	"github.com/matrix-system/matrix-pay/pkg/web"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Register(ctx context.Context, username, email, password string) (domain.UserWithoutPassword, error)
	Authenticate(ctx context.Context, username, password, requestedRole string) (domain.User, error)
}

// SessionManager keeps the single active session.
type SessionManager interface {
	LogIn(ctx context.Context, user domain.User) (domain.Session, error)
	LogOut(ctx context.Context) error
}

// Ledger lists the session account's transactions.
type Ledger interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// LoginRecorder counts login attempts by outcome.
type LoginRecorder interface {
	LoginAttempt(outcome string)
}

type nopLoginRecorder struct{}

func (nopLoginRecorder) LoginAttempt(string) {}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service  Service
	sessions SessionManager
	ledger   Ledger
	recorder LoginRecorder
}

// NewHandler returns user handler. recorder may be nil.
func NewHandler(us Service, sm SessionManager, ledger Ledger, recorder LoginRecorder) *Handler {
	if recorder == nil {
		recorder = nopLoginRecorder{}
	}

	return &Handler{
		service:  us,
		sessions: sm,
		ledger:   ledger,
		recorder: recorder,
	}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// Register handles http request to create a regular account.
func (h *Handler) Register(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req registerRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorsMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	createdUser, err := h.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		switch err {
		case domain.ErrUsernameAlreadyExists, domain.ErrEmailAlreadyExists:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrUsernameTooShort, domain.ErrPasswordTooShort, domain.ErrInvalidEmail:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			User domain.UserWithoutPassword `json:"user"`
		}{
			User: createdUser,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

type loginRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	LoginType string `json:"loginType" binding:"omitempty,oneof=user admin"`
}

// Login handles http login request, replacing any active session.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorsMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	if req.LoginType == "" {
		req.LoginType = domain.RoleUser
	}

	user, err := h.service.Authenticate(ctx, req.Username, req.Password, req.LoginType)
	if err != nil {
		h.recorder.LoginAttempt("failure")

		switch err {
		case domain.ErrWrongCredentials, domain.ErrWrongRole:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	session, err := h.sessions.LogIn(ctx, user)
	if err != nil {
		l.Warn().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	h.recorder.LoginAttempt("success")

	res := web.Response{
		Data: struct {
			User    domain.UserWithoutPassword `json:"user"`
			Session domain.Session             `json:"session"`
		}{
			User:    userWithoutPassword(user),
			Session: session,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Logout clears the active session. Logging out twice is not an error.
func (h *Handler) Logout(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	if err := h.sessions.LogOut(ctx); err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

// Me returns the session account without its credential.
func (h *Handler) Me(gctx *gin.Context) {
	account, ok := middleware.AccountFromContext(gctx)
	if !ok {
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrNoSession))
		return
	}

	res := web.Response{
		Data: struct {
			User domain.UserWithoutPassword `json:"user"`
		}{
			User: userWithoutPassword(account),
		},
	}

	gctx.JSON(http.StatusOK, res)
}

// Transactions lists the session account's transaction history.
func (h *Handler) Transactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	account, ok := middleware.AccountFromContext(gctx)
	if !ok {
		gctx.JSON(http.StatusUnauthorized, web.Error(domain.ErrNoSession))
		return
	}

	txs, err := h.ledger.ListByAccount(ctx, account.ID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	res := web.Response{
		Data: struct {
			Transactions []domain.Transaction `json:"transactions"`
		}{
			Transactions: txs,
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
