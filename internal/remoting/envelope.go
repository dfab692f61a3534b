package remoting

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentType is the media type of request and response envelopes.
const ContentType = "application/json"

// Response target suffixes appended to a request's response URI.
const (
	SuffixResult = "/onResult"
	SuffixStatus = "/onStatus"
)

// Header is out-of-band metadata attached to a request envelope.
type Header struct {
	Name       string `json:"name"`
	Persistent bool   `json:"persistent"`
	Value      any    `json:"value"`
}

// RequestBody is one procedure invocation inside a request envelope.
type RequestBody struct {
	Target   string `json:"target"`
	Response string `json:"response"`
	Args     []any  `json:"args"`
}

// Request is the envelope POSTed to the gateway.
type Request struct {
	Headers []Header      `json:"headers"`
	Bodies  []RequestBody `json:"bodies"`
}

// ResponseBody answers one RequestBody. Target is the request's response
// URI followed by SuffixResult or SuffixStatus.
type ResponseBody struct {
	Target string          `json:"target"`
	Body   json.RawMessage `json:"body"`
}

// Response is the envelope returned by the gateway.
type Response struct {
	Headers []Header       `json:"headers,omitempty"`
	Bodies  []ResponseBody `json:"bodies"`
}

// find returns the body answering responseURI and whether it is a fault.
func (r *Response) find(responseURI string) (body json.RawMessage, fault bool, err error) {
	for _, b := range r.Bodies {
		switch b.Target {
		case responseURI + SuffixResult:
			return b.Body, false, nil
		case responseURI + SuffixStatus:
			return b.Body, true, nil
		}
		if strings.HasPrefix(b.Target, responseURI+"/") {
			return nil, false, fmt.Errorf("unknown response target %q", b.Target)
		}
	}
	return nil, false, fmt.Errorf("no response for %s", responseURI)
}
