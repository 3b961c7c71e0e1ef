package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownWindow indicates an unrecognized report window name.
	ErrUnknownWindow = errors.New("unknown report window")
	// ErrNoBackup indicates that no backup has been taken yet.
	ErrNoBackup = errors.New("no backup available")
	// ErrInvalidImport indicates an import payload without any accounts.
	ErrInvalidImport = errors.New("invalid import payload")
)

// ReportWindow selects the time range of a report.
type ReportWindow string

// All report windows.
const (
	WindowDaily   ReportWindow = "daily"
	WindowWeekly  ReportWindow = "weekly"
	WindowMonthly ReportWindow = "monthly"
)

// ParseReportWindow validates a window name.
func ParseReportWindow(s string) (ReportWindow, error) {
	switch ReportWindow(s) {
	case WindowDaily, WindowWeekly, WindowMonthly:
		return ReportWindow(s), nil
	}

	return "", ErrUnknownWindow
}

// Report is a read-side aggregation over the ledger for a time window.
// Revenue is converted to USD at the fixed exchange rates.
type Report struct {
	Title             string          `json:"title"`
	Window            ReportWindow    `json:"window"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	TotalTransactions int             `json:"totalTransactions"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	Currency          string          `json:"currency"`
	Transactions      []Transaction   `json:"transactions"`
	Summary           string          `json:"summary"`
}

// Backup is a full on-demand snapshot of users and transactions.
type Backup struct {
	Users        []User        `json:"users"`
	Transactions []Transaction `json:"transactions"`
	BackupDate   time.Time     `json:"backupDate"`
	Version      string        `json:"version"`
}

// Export is the full-data JSON export payload.
type Export struct {
	Users        []User        `json:"users"`
	Transactions []Transaction `json:"transactions"`
	ExportDate   time.Time     `json:"exportDate"`
	System       string        `json:"system"`
}
