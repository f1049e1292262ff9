// Package dispatch routes validated tool requests to their handlers and
// normalizes every outcome into a tool.Result.
//
// Dispatch is the only place a request turns into a result. Transports call
// it and never see a handler error directly: validation failures, handler
// errors, panics, timeouts and exclusivity conflicts all come back as an
// error result carrying a classified *tool.Error.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpl-au/hubtools/internal/log"
	"github.com/jpl-au/hubtools/internal/registry"
	"github.com/jpl-au/hubtools/internal/telemetry"
	"github.com/jpl-au/hubtools/internal/tool"
	"github.com/jpl-au/hubtools/internal/validate"
)

// ErrNoHandler is the cause of a HandlerFailure for a registered tool that
// has no handler.
var ErrNoHandler = errors.New("no handler registered")

// Dispatcher invokes handlers for requests against one registry. It is safe
// for concurrent use.
type Dispatcher struct {
	reg      *registry.Registry
	handlers map[string]tool.Handler

	timeout  time.Duration
	observer *telemetry.Observer
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[string]string // category -> request id holding it
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each handler invocation. Zero or negative means no
// bound.
func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.timeout = d }
}

// WithObserver records each dispatch into OpenTelemetry.
func WithObserver(o *telemetry.Observer) Option {
	return func(dp *Dispatcher) { dp.observer = o }
}

// WithLogger sets the runtime logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(dp *Dispatcher) { dp.logger = l }
}

// New returns a dispatcher for reg. handlers is keyed by tool name; names
// missing from it fail when called.
func New(reg *registry.Registry, handlers map[string]tool.Handler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:      reg,
		handlers: handlers,
		logger:   slog.New(slog.DiscardHandler),
		inFlight: make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the catalog the dispatcher validates against.
func (d *Dispatcher) Registry() *registry.Registry { return d.reg }

// Dispatch runs one request to completion and returns its result. It
// always returns exactly one result, never an error.
func (d *Dispatcher) Dispatch(ctx context.Context, req tool.Request) tool.Result {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	transport := req.Transport
	if transport == "" {
		transport = "internal"
	}

	start := time.Now()
	audit := log.Event(transport+":"+req.Tool, "call").
		Transport(transport).
		Request(req.ID).
		Args(req.Arguments.Names())

	res := d.run(ctx, req)
	elapsed := time.Since(start)

	var kind string
	var err error
	if res.Err != nil {
		kind = string(res.Err.Kind)
		err = res.Err
	}
	audit.Kind(kind).Write(err)

	d.observer.ObserveInvoke(ctx, telemetry.Invocation{
		Tool:      req.Tool,
		Transport: transport,
		RequestID: req.ID,
		Kind:      kind,
		Start:     start,
		Duration:  elapsed,
	})

	attrs := []any{
		"tool", req.Tool,
		"transport", transport,
		"request_id", req.ID,
		"duration", elapsed,
	}
	if err != nil {
		d.logger.Warn("tool call failed", append(attrs, "kind", kind, "error", err)...)
	} else {
		d.logger.Info("tool call", attrs...)
	}
	return res
}

func (d *Dispatcher) run(ctx context.Context, req tool.Request) tool.Result {
	desc, err := validate.Request(d.reg, req.Tool, req.Arguments)
	if err != nil {
		return tool.Failure(classify(req.Tool, err))
	}

	h := d.handlers[desc.Name]
	if h == nil {
		return tool.Failure(tool.HandlerFailure(desc.Name, ErrNoHandler))
	}

	if cat := desc.Exclusive; cat != "" {
		if !d.acquire(cat, req.ID) {
			return tool.Failure(tool.Busy(desc.Name, cat))
		}
		defer d.release(cat)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	text, err := invoke(ctx, h, req.Arguments)
	if err != nil {
		return tool.Failure(classify(desc.Name, err))
	}
	return tool.Text(text)
}

// invoke calls h, converting a panic into an error.
func invoke(ctx context.Context, h tool.Handler, args tool.Args) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, args)
}

// remoteDetailer is implemented by errors that carry the remote hub's own
// description of a failure.
type remoteDetailer interface {
	RemoteDetail() string
}

// classify maps an error onto the failure taxonomy. Errors that are already
// classified pass through unchanged.
func classify(name string, err error) *tool.Error {
	var te *tool.Error
	if errors.As(err, &te) {
		return te
	}
	var rd remoteDetailer
	if errors.As(err, &rd) && rd.RemoteDetail() != "" {
		return tool.RemoteDetail(name, err)
	}
	return tool.HandlerFailure(name, err)
}

// acquire marks category as in flight. It reports false, without waiting,
// when another request already holds it.
func (d *Dispatcher) acquire(category, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[category]; busy {
		return false
	}
	d.inFlight[category] = id
	return true
}

func (d *Dispatcher) release(category string) {
	d.mu.Lock()
	delete(d.inFlight, category)
	d.mu.Unlock()
}

// InFlight reports whether category currently has an invocation running.
func (d *Dispatcher) InFlight(category string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[category]
	return ok
}
