// Package gatewaytest provides a fake remoting gateway that records the
// envelopes it receives.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"remoting-login/internal/remoting"
)

// GatewayReply answers one decoded request body.
type GatewayReply func(req remoting.Request, body remoting.RequestBody) remoting.ResponseBody

// Gateway is a fake remoting gateway that records every request envelope.
type Gateway struct {
	*httptest.Server

	mu         sync.Mutex
	requests   []remoting.Request
	requestIDs []string
	reply      GatewayReply
}

// NewGateway starts a fake gateway answering with reply. It is closed when
// the test ends.
func NewGateway(t testing.TB, reply GatewayReply) *Gateway {
	t.Helper()

	g := &Gateway{reply: reply}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.Close)
	return g
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request) {
	var req remoting.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.requestIDs = append(g.requestIDs, r.Header.Get("X-Request-ID"))
	reply := g.reply
	g.mu.Unlock()

	resp := remoting.Response{}
	for _, b := range req.Bodies {
		resp.Bodies = append(resp.Bodies, reply(req, b))
	}

	w.Header().Set("Content-Type", remoting.ContentType)
	_ = json.NewEncoder(w).Encode(resp)
}

// SetReply swaps the reply used for later requests.
func (g *Gateway) SetReply(reply GatewayReply) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reply = reply
}

// Requests returns a copy of the envelopes received so far.
func (g *Gateway) Requests() []remoting.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]remoting.Request(nil), g.requests...)
}

// RequestIDs returns the X-Request-ID header of each request received.
func (g *Gateway) RequestIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.requestIDs...)
}

// ResultReply answers every call with value.
func ResultReply(value any) GatewayReply {
	return func(_ remoting.Request, body remoting.RequestBody) remoting.ResponseBody {
		raw, _ := json.Marshal(value)
		return remoting.ResponseBody{Target: body.Response + remoting.SuffixResult, Body: raw}
	}
}

// FaultReply answers every call with the given raw JSON fault body.
func FaultReply(raw string) GatewayReply {
	return func(_ remoting.Request, body remoting.RequestBody) remoting.ResponseBody {
		return remoting.ResponseBody{Target: body.Response + remoting.SuffixStatus, Body: json.RawMessage(raw)}
	}
}

// SumReply adds the numeric arguments of every call.
func SumReply() GatewayReply {
	return func(_ remoting.Request, body remoting.RequestBody) remoting.ResponseBody {
		var total float64
		for _, a := range body.Args {
			if n, ok := a.(float64); ok {
				total += n
			}
		}
		raw, _ := json.Marshal(total)
		return remoting.ResponseBody{Target: body.Response + remoting.SuffixResult, Body: raw}
	}
}
