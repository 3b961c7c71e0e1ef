// Package paymentdelivery manages the delivery layer of payments and the
// product catalog.
package paymentdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/internal/paymentservice"
	"github.com/matrix-system/matrix-pay/pkg/errorspkg"
	"github.com/matrix-system/matrix-pay/pkg/web"
)

// Service provides service layer interface needed by payment delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package paymentdelivery
type Service interface {
	Initiate(ctx context.Context, kind string, opts domain.PaymentOptions) (string, error)
	Current() (domain.Payment, error)
	Fail(reason string) error
}

// Handler facilitates payment delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns payment handler.
func NewHandler(ps Service) *Handler {
	return &Handler{service: ps}
}

type createRequest struct {
	Product string `json:"product" binding:"required"`
	Coupon  string `json:"coupon"`
	Network string `json:"network"`
}

// Create handles http request to start a payment. The payment runs
// asynchronously; its id is returned immediately for progress polling.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
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

	opts := domain.PaymentOptions{Coupon: req.Coupon, Network: req.Network}

	id, err := h.service.Initiate(ctx, req.Product, opts)
	if err != nil {
		switch err {
		case domain.ErrInvalidProduct:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		case domain.ErrPaymentInFlight:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		case domain.ErrNoSession:
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		case domain.ErrWrongRole:
			gctx.JSON(http.StatusForbidden, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := web.Response{
		Data: struct {
			PaymentID string `json:"paymentId"`
		}{
			PaymentID: id,
		},
	}

	gctx.JSON(http.StatusAccepted, res)
}

// Current returns the in-flight payment with its step progress.
func (h *Handler) Current(gctx *gin.Context) {
	payment, err := h.service.Current()
	if err != nil {
		gctx.JSON(http.StatusNotFound, web.Error(domain.ErrNoPaymentInFlight))
		return
	}

	res := web.Response{
		Data: struct {
			Payment domain.Payment `json:"payment"`
		}{
			Payment: payment,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel aborts the in-flight payment. A new payment must be initiated from
// scratch afterwards.
func (h *Handler) Cancel(gctx *gin.Context) {
	var req cancelRequest
	_ = gctx.ShouldBindJSON(&req)

	if req.Reason == "" {
		req.Reason = "payment cancelled"
	}

	if err := h.service.Fail(req.Reason); err != nil {
		gctx.JSON(http.StatusNotFound, web.Error(domain.ErrNoPaymentInFlight))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

// Products lists the product catalog and the supported crypto networks.
func (h *Handler) Products(gctx *gin.Context) {
	res := web.Response{
		Data: struct {
			Products []domain.Product                `json:"products"`
			Networks map[string]domain.CryptoNetwork `json:"networks"`
		}{
			Products: paymentservice.ListProducts(),
			Networks: paymentservice.ListNetworks(),
		},
	}

	gctx.JSON(http.StatusOK, res)
}
