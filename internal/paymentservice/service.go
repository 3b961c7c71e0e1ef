// Package paymentservice drives the simulated payment pipeline. A single
// payment at a time moves through a fixed sequence of timed steps; on
// completion it settles the ledger and the buyer's balance in one commit.
package paymentservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/matrix-system/matrix-pay/internal/domain"
	"github.com/matrix-system/matrix-pay/pkg/currencypkg"
)

// Sessions provides the session layer interface needed by the payment service.
type Sessions interface {
	Current(ctx context.Context) (domain.User, error)
}

// Ledger provides the settlement interface: appending the transaction and
// crediting the balance must happen in one commit.
type Ledger interface {
	Settle(ctx context.Context, t domain.Transaction, credit decimal.Decimal) (decimal.Decimal, error)
}

// Notifier is how payment outcomes reach the presentation layer. The service
// never touches presentation directly.
type Notifier interface {
	Notify(message, severity string)
	NavigateTo(section string)
}

// Notification severities.
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
	SeverityInfo    = "info"
)

// Recorder collects payment metrics.
type Recorder interface {
	PaymentCompleted(duration time.Duration)
	PaymentFailed()
}

type stepConfig struct {
	name     string
	duration time.Duration
}

// The step sequence is fixed and ordered; durations are nominal pacing
// values standing in for real external I/O.
var paymentSteps = []stepConfig{
	{name: "Validation", duration: 1500 * time.Millisecond},
	{name: "Processing", duration: 2000 * time.Millisecond},
	{name: "Confirmation", duration: 2500 * time.Millisecond},
	{name: "Completion", duration: 1000 * time.Millisecond},
}

// cooldown is how long the single-flight slot stays occupied after a
// terminal state before a new payment may start.
const cooldown = 3 * time.Second

// Service runs the payment state machine. The single-flight invariant is
// enforced by the current-payment slot guarded by mu: concurrent or
// re-entrant initiations are rejected, never queued.
type Service struct {
	sessions Sessions
	ledger   Ledger
	notifier Notifier
	recorder Recorder
	logger   zerolog.Logger
	scale    float64

	mu      sync.Mutex
	current *domain.Payment
	product domain.Product
	cancel  context.CancelCauseFunc
	done    chan struct{}
}

// New returns the payment service. scale multiplies all step durations and
// the cooldown; pass 1 for nominal timing. notifier and recorder may be nil.
func New(sessions Sessions, ledger Ledger, notifier Notifier, recorder Recorder, logger zerolog.Logger, scale float64) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	if recorder == nil {
		recorder = nopRecorder{}
	}

	if scale <= 0 {
		scale = 1
	}

	return &Service{
		sessions: sessions,
		ledger:   ledger,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		scale:    scale,
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}
func (nopNotifier) NavigateTo(string)     {}

type nopRecorder struct{}

func (nopRecorder) PaymentCompleted(time.Duration) {}
func (nopRecorder) PaymentFailed()                 {}

func (s *Service) scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * s.scale)
}

func mintPaymentID() string {
	return fmt.Sprintf("payment_%d_%s", time.Now().UnixMilli(), strings.Split(uuid.NewString(), "-")[0])
}

func mintTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TX%d%s", time.Now().UnixMilli(), suffix)
}

// Initiate starts a payment for the product kind and returns its id
// immediately; the steps run asynchronously. It fails with ErrNoSession when
// nobody is logged in, ErrWrongRole for a non-user account, ErrInvalidProduct
// for an unknown kind or network, and ErrPaymentInFlight while another
// payment occupies the slot.
func (s *Service) Initiate(ctx context.Context, kind string, opts domain.PaymentOptions) (string, error) {
	user, err := s.sessions.Current(ctx)
	if err != nil {
		if err == domain.ErrNoSession {
			return "", domain.ErrNoSession
		}

		return "", err
	}

	if user.Role != domain.RoleUser {
		return "", domain.ErrWrongRole
	}

	product, err := resolveProduct(kind, opts)
	if err != nil {
		return "", err
	}

	amount, currency, err := CalculateTotal(kind, opts)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The slot check and the slot set happen under one lock so that
	// re-entrant calls (a double-clicked buy) cannot both win.
	if s.current != nil {
		return "", domain.ErrPaymentInFlight
	}

	payment := &domain.Payment{
		ID:          mintPaymentID(),
		AccountID:   user.ID,
		ProductKind: kind,
		ProductName: product.Name,
		Amount:      amount,
		Currency:    currency,
		Status:      domain.PaymentPending,
		CreatedAt:   time.Now(),
		Metadata:    opts,
	}

	runCtx, cancel := context.WithCancelCause(s.logger.WithContext(context.Background()))

	s.current = payment
	s.product = product
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(runCtx)

	s.logger.Info().
		Str("payment_id", payment.ID).
		Str("product", kind).
		Str("amount", amount.String()).
		Str("currency", currency).
		Msg("payment initiated")

	return payment.ID, nil
}

// run executes the step sequence. Step k+1 never starts before step k's
// timer has fired; transitions are one-way.
func (s *Service) run(ctx context.Context) {
	start := time.Now()

	for i := range paymentSteps {
		s.beginStep(i)

		select {
		case <-time.After(s.scaled(paymentSteps[i].duration)):
		case <-ctx.Done():
			s.fail(failReason(ctx))
			return
		}

		s.completeStep(i)
	}

	s.complete(ctx, start)
}

func failReason(ctx context.Context) string {
	cause := context.Cause(ctx)
	if cause == nil || errors.Is(cause, context.Canceled) {
		return "payment cancelled"
	}

	return cause.Error()
}

func (s *Service) beginStep(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.Status = domain.PaymentProcessing
	s.current.Steps = append(s.current.Steps, domain.PaymentStep{
		Name:      paymentSteps[i].name,
		StartedAt: time.Now(),
		Status:    domain.StepProcessing,
	})
}

func (s *Service) completeStep(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.current.Steps[i].CompletedAt = &now
	s.current.Steps[i].Status = domain.StepCompleted
}

// settlementCredit applies the product's settlement rule. The asymmetry is
// inherited from the simulated business rules: crypto purchases credit the
// full USD equivalent while physical purchases credit only the pre-shipping
// base price.
func settlementCredit(product domain.Product, amount decimal.Decimal, currency string) decimal.Decimal {
	switch product.Settlement {
	case domain.SettleFiatEquivalent:
		return currencypkg.ToUSD(amount, currency)
	case domain.SettleBasePrice:
		return product.Price
	}

	return decimal.Zero
}

func (s *Service) complete(ctx context.Context, start time.Time) {
	s.mu.Lock()

	now := time.Now()
	p := s.current
	p.Status = domain.PaymentCompleted
	p.CompletedAt = &now
	p.TransactionID = mintTransactionID()

	tx := domain.Transaction{
		ID:        p.TransactionID,
		AccountID: p.AccountID,
		Product:   p.ProductKind,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    domain.PaymentCompleted,
		Date:      now,
		Details: domain.TransactionDetails{
			ProductName: p.ProductName,
			Steps:       copySteps(p.Steps),
			Metadata:    p.Metadata,
		},
	}

	credit := settlementCredit(s.product, p.Amount, p.Currency)

	s.mu.Unlock()

	newBalance, err := s.ledger.Settle(ctx, tx, credit)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_id", p.ID).Msg("settlement failed")
		s.fail("settlement failed")

		return
	}

	s.logger.Info().
		Str("payment_id", p.ID).
		Str("transaction_id", tx.ID).
		Str("credit", credit.String()).
		Str("new_balance", newBalance.String()).
		Msg("payment completed")

	s.recorder.PaymentCompleted(time.Since(start))
	s.notifier.Notify(fmt.Sprintf("Payment %s completed", tx.ID), SeveritySuccess)
	s.notifier.NavigateTo("success")

	s.release()
}

// fail marks the payment failed and releases the slot after the cooldown.
// A failed payment never settles: no ledger append, no balance change.
func (s *Service) fail(reason string) {
	s.mu.Lock()

	now := time.Now()
	p := s.current
	p.Status = domain.PaymentFailed
	p.FailedAt = &now
	p.FailReason = reason

	s.mu.Unlock()

	s.logger.Warn().Str("payment_id", p.ID).Str("reason", reason).Msg("payment failed")

	s.recorder.PaymentFailed()
	s.notifier.Notify(fmt.Sprintf("Payment error: %s", reason), SeverityError)
	s.notifier.NavigateTo("dashboard")

	s.release()
}

// release frees the single-flight slot after the cooldown.
func (s *Service) release() {
	time.Sleep(s.scaled(cooldown))

	s.mu.Lock()
	s.current = nil
	s.cancel = nil
	done := s.done
	s.done = nil
	s.mu.Unlock()

	close(done)
}

// Current returns a copy of the in-flight payment for progress polling.
func (s *Service) Current() (domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domain.Payment{}, domain.ErrNoPaymentInFlight
	}

	p := *s.current
	p.Steps = copySteps(s.current.Steps)

	return p, nil
}

// Fail aborts the in-flight payment with the given reason. There is no
// retry: the caller must re-initiate a brand-new payment.
func (s *Service) Fail(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.cancel == nil {
		return domain.ErrNoPaymentInFlight
	}

	s.cancel(errors.New(reason))

	return nil
}

// Close cancels any in-flight run and waits for the slot to be released.
func (s *Service) Close() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel(nil)
	}

	if done != nil {
		<-done
	}
}

func copySteps(steps []domain.PaymentStep) []domain.PaymentStep {
	if steps == nil {
		return nil
	}

	out := make([]domain.PaymentStep, len(steps))
	copy(out, steps)

	return out
}
