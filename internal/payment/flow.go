package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"club-dashboard-backend/internal/club"
)

// SessionKey is where the pending correlation id lives in the session.
const SessionKey = "current_transaction_id"

// DefaultVerifyTimeout bounds a single gateway status check.
const DefaultVerifyTimeout = 30 * time.Second

var (
	ErrInvalidTransaction = errors.New("transaction id must be positive")
	ErrNoRedirect         = errors.New("gateway returned no redirect url")
	ErrNoCorrelationID    = errors.New("gateway returned no correlation id")
	ErrAlreadyPaid        = errors.New("transaction is already paid")
)

// State is what the payment-status screen shows.
type State string

const (
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateFailure State = "failure"
	StatePending State = "pending"
)

// FailureCause tells apart the ways a verification can end in StateFailure.
type FailureCause string

const (
	CauseNone             FailureCause = ""
	CauseInvalidReference FailureCause = "invalid_reference"
	CauseDeclined         FailureCause = "declined"
	CauseUnrecognized     FailureCause = "unrecognized_status"
	CauseVerifyError      FailureCause = "verify_error"
	CauseTimeout          FailureCause = "timeout"
	CauseInitiateError    FailureCause = "initiate_error"
	CauseAlreadyPaid      FailureCause = "already_paid"
)

// User-facing messages.
const (
	MessageVerifying        = "Verifying payment status..."
	MessageSuccess          = "Your payment was successful!"
	MessagePending          = "Payment is currently pending. Please check back later."
	MessageDeclined         = "Payment failed or declined."
	MessageVerifyError      = "Could not verify payment status. Please contact support."
	MessageInvalidReference = "Invalid transaction reference."
)

// Initiation is the gateway's answer to a payment request.
type Initiation struct {
	RedirectURL   string `json:"redirect_url"`
	CorrelationID string `json:"correlation_id"`
}

// Gateway is the payment collaborator. Transaction loads the invoice being
// paid so a settled one is never sent to the gateway again.
type Gateway interface {
	Transaction(ctx context.Context, id int) (club.Transaction, error)
	InitiatePayment(ctx context.Context, transactionID int) (Initiation, error)
	CheckPaymentStatus(ctx context.Context, correlationID string) (GatewayStatus, error)
}

// Session is the per-user store the correlation id is kept in between
// leaving for the gateway and coming back. session.Scoped implements it.
type Session interface {
	ID() string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Event is one initiation or verification, as written to the audit trail.
type Event struct {
	Kind          string
	SessionID     string
	TransactionID int
	CorrelationID string
	State         State
	Cause         FailureCause
	GatewayStatus string
	Detail        string
	At            time.Time
}

const (
	EventInitiate = "initiate"
	EventVerify   = "verify"
)

// Recorder persists payment events.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }

// Service starts payments and builds verification flows.
type Service struct {
	gw      Gateway
	rec     Recorder
	log     zerolog.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sends every event to rec.
func WithRecorder(rec Recorder) Option {
	return func(s *Service) { s.rec = rec }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithVerifyTimeout bounds each status check. Zero disables the bound.
func WithVerifyTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a Service talking to gw.
func NewService(gw Gateway, opts ...Option) *Service {
	s := &Service{
		gw:      gw,
		rec:     nopRecorder{},
		log:     zerolog.Nop(),
		timeout: DefaultVerifyTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) record(ctx context.Context, e Event) {
	e.At = s.now()
	if err := s.rec.Record(ctx, e); err != nil {
		s.log.Warn().Err(err).Str("kind", e.Kind).Msg("failed to record payment event")
	}
}

// Initiate asks the gateway to start paying transactionID and stores the
// returned correlation id in sess. Paid transactions are rejected with
// ErrAlreadyPaid. Nothing is stored when it fails, so calling it again is a
// plain retry.
func (s *Service) Initiate(ctx context.Context, sess Session, transactionID int) (Initiation, error) {
	if transactionID <= 0 {
		return Initiation{}, ErrInvalidTransaction
	}
	log := s.log.With().Str("session", sess.ID()).Int("transaction", transactionID).Logger()

	reject := func(cause FailureCause, err error) (Initiation, error) {
		log.Error().Err(err).Str("cause", string(cause)).Msg("payment initiation failed")
		s.record(ctx, Event{
			Kind:          EventInitiate,
			SessionID:     sess.ID(),
			TransactionID: transactionID,
			State:         StateFailure,
			Cause:         cause,
			Detail:        err.Error(),
		})
		return Initiation{}, fmt.Errorf("initiating payment for transaction %d: %w", transactionID, err)
	}
	fail := func(err error) (Initiation, error) {
		return reject(CauseInitiateError, err)
	}

	tx, err := s.gw.Transaction(ctx, transactionID)
	if err != nil {
		return fail(fmt.Errorf("loading transaction: %w", err))
	}
	if tx.Paid {
		return reject(CauseAlreadyPaid, ErrAlreadyPaid)
	}

	started, err := s.gw.InitiatePayment(ctx, transactionID)
	if err != nil {
		return fail(err)
	}
	if started.RedirectURL == "" {
		return fail(ErrNoRedirect)
	}
	if started.CorrelationID == "" {
		return fail(ErrNoCorrelationID)
	}
	if err := sess.Set(ctx, SessionKey, started.CorrelationID); err != nil {
		return fail(fmt.Errorf("saving correlation id: %w", err))
	}

	log.Info().Str("correlation_id", started.CorrelationID).Msg("payment initiated")
	s.record(ctx, Event{
		Kind:          EventInitiate,
		SessionID:     sess.ID(),
		TransactionID: transactionID,
		CorrelationID: started.CorrelationID,
		State:         StateLoading,
	})
	return started, nil
}

// Outcome is the terminal result of a verification.
type Outcome struct {
	State         State        `json:"state"`
	Message       string       `json:"message"`
	Cause         FailureCause `json:"cause,omitempty"`
	CorrelationID string       `json:"correlation_id,omitempty"`
	GatewayStatus string       `json:"gateway_status,omitempty"`
	Err           error        `json:"-"`
}

// Flow verifies one return from the gateway. It checks the gateway at most
// once; later calls to Verify return the first outcome.
type Flow struct {
	svc  *Service
	sess Session

	mu      sync.Mutex
	done    bool
	outcome Outcome
}

// NewFlow starts a verification flow in StateLoading.
func (s *Service) NewFlow(sess Session) *Flow {
	return &Flow{
		svc:     s,
		sess:    sess,
		outcome: Outcome{State: StateLoading, Message: MessageVerifying},
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.outcome.State
}

// Verify reads the stored correlation id and asks the gateway for its status.
// The id is cleared only on success; pending and failed payments keep it so
// the user can check again later.
func (f *Flow) Verify(ctx context.Context) Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return f.outcome
	}
	f.done = true
	f.outcome = f.verify(ctx)

	s := f.svc
	e := Event{
		Kind:          EventVerify,
		SessionID:     f.sess.ID(),
		CorrelationID: f.outcome.CorrelationID,
		State:         f.outcome.State,
		Cause:         f.outcome.Cause,
		GatewayStatus: f.outcome.GatewayStatus,
	}
	if f.outcome.Err != nil {
		e.Detail = f.outcome.Err.Error()
	}
	s.record(ctx, e)
	return f.outcome
}

func (f *Flow) verify(ctx context.Context) Outcome {
	s := f.svc
	log := s.log.With().Str("session", f.sess.ID()).Logger()

	id, ok, err := f.sess.Get(ctx, SessionKey)
	if err != nil {
		log.Error().Err(err).Str("cause", string(CauseVerifyError)).Msg("could not read payment reference")
		return Outcome{State: StateFailure, Message: MessageVerifyError, Cause: CauseVerifyError, Err: err}
	}
	if !ok || id == "" {
		log.Warn().Str("cause", string(CauseInvalidReference)).Msg("no payment reference in session")
		return Outcome{State: StateFailure, Message: MessageInvalidReference, Cause: CauseInvalidReference}
	}
	log = log.With().Str("correlation_id", id).Logger()

	checkCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	gs, err := s.gw.CheckPaymentStatus(checkCtx, id)
	if err != nil {
		cause := CauseVerifyError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
			cause = CauseTimeout
		}
		log.Error().Err(err).Str("cause", string(cause)).Msg("payment verification error")
		return Outcome{State: StateFailure, Message: MessageVerifyError, Cause: cause, CorrelationID: id, Err: err}
	}

	out := Outcome{CorrelationID: id, GatewayStatus: gs.Status}
	switch Normalize(gs) {
	case StatusSuccess:
		out.State, out.Message = StateSuccess, MessageSuccess
		if err := f.sess.Delete(ctx, SessionKey); err != nil {
			log.Warn().Err(err).Msg("failed to clear payment reference")
		}
		log.Info().Msg("payment confirmed")
	case StatusPending:
		out.State, out.Message = StatePending, MessagePending
		log.Info().Msg("payment pending")
	case StatusFailed:
		out.State, out.Message, out.Cause = StateFailure, MessageDeclined, CauseDeclined
		log.Warn().Str("cause", string(CauseDeclined)).Str("gateway_status", gs.Status).Msg("payment declined")
	default:
		out.State, out.Message, out.Cause = StateFailure, MessageDeclined, CauseUnrecognized
		log.Warn().Str("cause", string(CauseUnrecognized)).Str("gateway_status", gs.Status).Msg("unrecognized gateway status")
	}
	return out
}
