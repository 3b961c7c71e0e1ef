package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrTransactionExists indicates an append with an id already in the ledger.
var ErrTransactionExists = errors.New("transaction already exists")

// TransactionDetails carries the step trace and purchase options of the
// payment that produced the transaction.
type TransactionDetails struct {
	ProductName string         `json:"productName"`
	Steps       []PaymentStep  `json:"steps,omitempty"`
	Metadata    PaymentOptions `json:"metadata"`
}

// Transaction is an immutable, completed record of a settled purchase.
// Once appended to the ledger it is never updated or deleted.
type Transaction struct {
	ID        string             `json:"id"`
	AccountID string             `json:"userId"`
	Product   string             `json:"product"`
	Amount    decimal.Decimal    `json:"amount"`
	Currency  string             `json:"currency"`
	Status    string             `json:"status"`
	Date      time.Time          `json:"date"`
	Details   TransactionDetails `json:"details"`
}
