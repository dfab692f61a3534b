package remoting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"remoting-login/internal/observability"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("remoting")

// ErrInvalidAddress is returned by Connect for an unusable gateway URL.
var ErrInvalidAddress = errors.New("invalid gateway address")

// Connection is one outbound connection to a remoting gateway. Headers added
// to it apply to the calls issued after them.
type Connection struct {
	address string
	client  *http.Client
	logger  *zap.Logger

	mu      sync.Mutex
	headers []Header
	seq     int
}

// Option configures a Connection.
type Option func(*Connection)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connection) {
		c.client = client
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connection) {
		c.logger = logger
	}
}

// Connect prepares a connection to the gateway at address. No network I/O
// happens until the first call.
func Connect(address string, opts ...Option) (*Connection, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidAddress)
	}

	c := &Connection{
		address: u.String(),
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Address returns the gateway URL.
func (c *Connection) Address() string {
	return c.address
}

// AddHeader attaches a header to later calls. A persistent header is sent
// with every later call; otherwise it is sent with the next call only.
// Adding a header with an existing name replaces it.
func (c *Connection) AddHeader(name string, persistent bool, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := Header{Name: name, Persistent: persistent, Value: value}
	for i := range c.headers {
		if c.headers[i].Name == name {
			c.headers[i] = h
			return
		}
	}
	c.headers = append(c.headers, h)
}

// takeHeaders returns the headers for the next call and forgets the
// one-shot ones. c.mu must be held.
func (c *Connection) takeHeaders() []Header {
	out := make([]Header, len(c.headers))
	copy(out, c.headers)

	kept := c.headers[:0]
	for _, h := range c.headers {
		if h.Persistent {
			kept = append(kept, h)
		}
	}
	c.headers = kept
	return out
}

// Call invokes procedure on the gateway with args. It returns immediately;
// every failure, including transport errors, is delivered through the
// returned PendingCall as a Fault.
func (c *Connection) Call(ctx context.Context, procedure string, args ...any) *PendingCall {
	c.mu.Lock()
	c.seq++
	responseURI := fmt.Sprintf("/%d", c.seq)
	headers := c.takeHeaders()
	c.mu.Unlock()

	if args == nil {
		args = []any{}
	}

	req := Request{
		Headers: headers,
		Bodies: []RequestBody{{
			Target:   procedure,
			Response: responseURI,
			Args:     args,
		}},
	}

	pending := newPendingCall(procedure)
	go c.do(ctx, req, pending)
	return pending
}

func (c *Connection) loggerFor(ctx context.Context) *zap.Logger {
	if c.logger != nil {
		return c.logger
	}
	return observability.LoggerWithTrace(ctx)
}

func (c *Connection) do(ctx context.Context, req Request, pending *PendingCall) {
	body := req.Bodies[0]

	requestID := observability.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = observability.NewRequestID()
		ctx = observability.ContextWithRequestID(ctx, requestID)
	}

	ctx, span := tracer.Start(ctx, "remoting.call",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("remoting.procedure", body.Target),
			attribute.String("remoting.response_uri", body.Response),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	logger := c.loggerFor(ctx)
	logger.Debug("remote call issued",
		zap.String("procedure", body.Target),
		zap.String("response_uri", body.Response),
		zap.Int("headers", len(req.Headers)),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	res := c.roundTrip(ctx, req, requestID)
	elapsed := time.Since(start)

	recordCall(ctx, body.Target, elapsed, res)

	if res.Fault != nil {
		span.RecordError(res.Fault)
		span.SetStatus(codes.Error, res.Fault.Code())
		logger.Warn("remote call faulted",
			zap.String("procedure", body.Target),
			zap.String("code", res.Fault.Code()),
			zap.Error(res.Fault),
			zap.String("request_id", requestID),
			zap.Duration("duration", elapsed),
		)
	} else {
		span.SetStatus(codes.Ok, "")
		logger.Info("remote call completed",
			zap.String("procedure", body.Target),
			zap.String("request_id", requestID),
			zap.Duration("duration", elapsed),
		)
	}

	pending.resolve(res)
}

func (c *Connection) roundTrip(ctx context.Context, req Request, requestID string) Result {
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{Fault: clientFault(CodeCallFailed, fmt.Errorf("encoding request: %w", err))}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address, bytes.NewReader(payload))
	if err != nil {
		return Result{Fault: clientFault(CodeCallFailed, err)}
	}
	httpReq.Header.Set("Content-Type", ContentType)
	httpReq.Header.Set("Accept", ContentType)
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{Fault: clientFault(CodeCallFailed, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{Fault: clientFault(CodeCallFailed, fmt.Errorf("HTTP: Status %d", resp.StatusCode))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Fault: clientFault(CodeCallFailed, fmt.Errorf("reading response: %w", err))}
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Result{Fault: clientFault(CodeBadVersion, fmt.Errorf("decoding response: %w", err))}
	}

	value, isFault, err := envelope.find(req.Bodies[0].Response)
	if err != nil {
		return Result{Fault: clientFault(CodeBadVersion, err)}
	}

	if isFault {
		fault := &Fault{}
		if len(bytes.TrimSpace(value)) == 0 {
			fault.Add("description", "")
			return Result{Fault: fault}
		}
		if err := json.Unmarshal(value, fault); err != nil {
			return Result{Fault: clientFault(CodeBadVersion, fmt.Errorf("decoding fault: %w", err))}
		}
		if len(fault.Fields) == 0 {
			fault.Add("description", "")
		}
		return Result{Fault: fault}
	}

	return Result{Value: value}
}
