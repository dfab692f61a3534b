package loginform

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"remoting-login/internal/observability"
	"remoting-login/internal/remoting"

	"go.uber.org/zap"
)

// Conn is the part of a remoting connection the form drives.
type Conn interface {
	AddHeader(name string, persistent bool, value any)
	Call(ctx context.Context, procedure string, args ...any) *remoting.PendingCall
}

// Dialer opens a new connection to the gateway at address.
type Dialer func(address string) (Conn, error)

// Form is the login form: it owns the operands and the status text, and
// opens a fresh connection for every submit.
type Form struct {
	address  string
	operands Operands
	dial     Dialer
	logger   *zap.Logger

	mu     sync.Mutex
	seq    uint64
	state  State
	status string
}

// Option configures a Form.
type Option func(*Form)

// WithDialer replaces the default remoting dialer.
func WithDialer(d Dialer) Option {
	return func(f *Form) {
		f.dial = d
	}
}

// WithOperands overrides DefaultOperands.
func WithOperands(ops Operands) Option {
	return func(f *Form) {
		f.operands = ops
	}
}

// WithLogger sets the form's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// New returns an idle form with an empty status that submits to the
// gateway at address.
func New(address string, opts ...Option) *Form {
	f := &Form{
		address:  address,
		operands: DefaultOperands,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.dial == nil {
		f.dial = remotingDialer(f.logger)
	}
	return f
}

func remotingDialer(logger *zap.Logger) Dialer {
	return func(address string) (Conn, error) {
		var opts []remoting.Option
		if logger != nil {
			opts = append(opts, remoting.WithLogger(logger))
		}
		conn, err := remoting.Connect(address, opts...)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Address returns the gateway address the form submits to.
func (f *Form) Address() string { return f.address }

// Operands returns the operands sent on submit.
func (f *Form) Operands() Operands { return f.operands }

// Status returns the current status text.
func (f *Form) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// State returns the state of the most recent submit.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submission is the handle of one submit. It completes exactly once.
type Submission struct {
	seq     uint64
	done    chan struct{}
	outcome Outcome
}

// Done is closed once the outcome is known.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the outcome is known or ctx is done. Giving up on the
// wait leaves the call running.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Submit sends creds as a one-shot Credentials header and calls the sum
// procedure on a new connection. Credentials are not validated. It never
// fails synchronously: dial and transport errors arrive as a failed Outcome.
// Cancelling ctx does not abort the call once issued.
func (f *Form) Submit(ctx context.Context, creds Credentials) *Submission {
	ctx = context.WithoutCancel(ctx)

	f.mu.Lock()
	f.seq++
	sub := &Submission{seq: f.seq, done: make(chan struct{})}
	f.state = AwaitingResponse
	f.mu.Unlock()

	logger := f.loggerFor(ctx)

	conn, err := f.dial(f.address)
	if err != nil {
		logger.Warn("gateway connection failed",
			zap.String("gateway", f.address),
			zap.Error(err),
		)
		f.onFault(ctx, sub, remoting.NewFault(
			"code", remoting.CodeConnectFailed,
			"description", err.Error(),
		))
		return sub
	}

	conn.AddHeader(CredentialsHeader, false, creds)

	logger.Info("login submitted",
		zap.String("gateway", f.address),
		zap.String("procedure", SumProcedure),
		zap.String("username", creds.Username),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	conn.Call(ctx, SumProcedure, f.operands.A, f.operands.B).Then(remoting.Responder{
		OnResult: func(value json.RawMessage) { f.onResult(ctx, sub, value) },
		OnStatus: func(fault *remoting.Fault) { f.onFault(ctx, sub, fault) },
	})

	return sub
}

func (f *Form) onResult(ctx context.Context, sub *Submission, value json.RawMessage) {
	f.loggerFor(ctx).Debug("remote result", zap.ByteString("raw", value))
	f.complete(ctx, sub, Outcome{Value: valueText(value)})
}

func (f *Form) onFault(ctx context.Context, sub *Submission, fault *remoting.Fault) {
	f.complete(ctx, sub, Outcome{Fault: fault})
}

// complete resolves sub and, if it is still the latest submit, writes its
// status. Outcomes of superseded submits never touch the status.
func (f *Form) complete(ctx context.Context, sub *Submission, outcome Outcome) {
	f.mu.Lock()
	latest := sub.seq == f.seq
	if latest {
		f.status = outcome.StatusText(f.operands)
		if outcome.Succeeded() {
			f.state = CompletedSuccess
		} else {
			f.state = CompletedFailure
		}
	}
	f.mu.Unlock()

	if !latest {
		f.loggerFor(ctx).Debug("dropping outcome of superseded submit")
	}

	sub.outcome = outcome
	close(sub.done)
}

func (f *Form) loggerFor(ctx context.Context) *zap.Logger {
	if f.logger != nil {
		return f.logger
	}
	return observability.LoggerWithTrace(ctx)
}

// valueText renders a result value: strings unquoted, everything else as
// its JSON text.
func valueText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "null"
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
