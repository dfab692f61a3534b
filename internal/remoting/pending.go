package remoting

import (
	"context"
	"encoding/json"
	"sync"
)

// Result is the resolution of a call: either a raw value or a fault.
type Result struct {
	Value json.RawMessage
	Fault *Fault
}

// OK reports whether the call completed successfully.
func (r Result) OK() bool { return r.Fault == nil }

// Responder is the pair of callbacks registered against one call.
type Responder struct {
	OnResult func(json.RawMessage)
	OnStatus func(*Fault)
}

// PendingCall is the handle returned by Connection.Call. It resolves once.
type PendingCall struct {
	Procedure string

	once   sync.Once
	done   chan struct{}
	result Result
}

func newPendingCall(procedure string) *PendingCall {
	return &PendingCall{Procedure: procedure, done: make(chan struct{})}
}

func (p *PendingCall) resolve(r Result) {
	p.once.Do(func() {
		p.result = r
		close(p.done)
	})
}

// Done is closed when the call has resolved.
func (p *PendingCall) Done() <-chan struct{} {
	return p.done
}

// Result returns the resolution, or false while the call is in flight.
func (p *PendingCall) Result() (Result, bool) {
	select {
	case <-p.done:
		return p.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the call resolves or ctx is done. Giving up on the wait
// does not abort the call.
func (p *PendingCall) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Then fires exactly one of the responder's callbacks once the call resolves.
// Nil callbacks are skipped.
func (p *PendingCall) Then(r Responder) {
	go func() {
		<-p.done
		if p.result.Fault != nil {
			if r.OnStatus != nil {
				r.OnStatus(p.result.Fault)
			}
			return
		}
		if r.OnResult != nil {
			r.OnResult(p.result.Value)
		}
	}()
}
