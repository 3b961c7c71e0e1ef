package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrPaymentInFlight indicates that another payment is already being processed.
	ErrPaymentInFlight = errors.New("a payment is already in progress")
	// ErrNoPaymentInFlight indicates that no payment is currently active.
	ErrNoPaymentInFlight = errors.New("no payment in progress")
)

// Payment statuses.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
)

// Step statuses.
const (
	StepProcessing = "processing"
	StepCompleted  = "completed"
)

// PaymentStep records one stage of the payment pipeline. Steps advance
// one-way and in order; a step is never revisited.
type PaymentStep struct {
	Name        string     `json:"name"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Status      string     `json:"status"`
}

// PaymentOptions carries the caller-supplied purchase options.
type PaymentOptions struct {
	Coupon  string `json:"coupon,omitempty"`
	Network string `json:"network,omitempty"`
}

// Payment is the single in-flight purchase attempt. It lives only for the
// duration of the run; the durable record is the resulting Transaction.
type Payment struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"userId"`
	ProductKind   string          `json:"productType"`
	ProductName   string          `json:"productName"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	Steps         []PaymentStep   `json:"steps"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	FailedAt      *time.Time      `json:"failedAt,omitempty"`
	FailReason    string          `json:"error,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	Metadata      PaymentOptions  `json:"metadata"`
}
