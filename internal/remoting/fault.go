package remoting

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Fault codes raised by the client itself.
const (
	CodeCallFailed    = "NetConnection.Call.Failed"
	CodeBadVersion    = "NetConnection.Call.BadVersion"
	CodeConnectFailed = "NetConnection.Connect.Failed"
)

// Fault codes a gateway reports for rejected calls.
const (
	CodeResourceNotFound    = "Service.ResourceNotFound"
	CodeMethodNotFound      = "Service.MethodNotFound"
	CodeMethodInvalid       = "Service.MethodInvalid"
	CodeAuthenticationError = "AuthenticationError"
)

// Field is a single name/message pair of a fault record.
type Field struct {
	Name    string
	Message string
}

// Fault is the error record delivered for a failed call. Fields keep the
// order in which the gateway emitted them.
type Fault struct {
	Fields []Field
}

// NewFault builds a fault from name/message pairs.
func NewFault(pairs ...string) *Fault {
	f := &Fault{}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Add(pairs[i], pairs[i+1])
	}
	return f
}

func clientFault(code string, err error) *Fault {
	return NewFault("code", code, "description", err.Error())
}

// Add appends a field, replacing the message of an existing field of the
// same name in place.
func (f *Fault) Add(name, message string) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Message = message
			return
		}
	}
	f.Fields = append(f.Fields, Field{Name: name, Message: message})
}

// Get returns the message of the named field.
func (f *Fault) Get(name string) (string, bool) {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld.Message, true
		}
	}
	return "", false
}

// Code returns the "code" field, or "" when absent.
func (f *Fault) Code() string {
	code, _ := f.Get("code")
	return code
}

func (f *Fault) Error() string {
	parts := make([]string, 0, len(f.Fields))
	for _, fld := range f.Fields {
		parts = append(parts, fld.Name+"="+fld.Message)
	}
	return "remoting fault: " + strings.Join(parts, ", ")
}

// UnmarshalJSON decodes an object into ordered fields. Any other JSON value
// becomes a single "description" field.
func (f *Fault) UnmarshalJSON(data []byte) error {
	f.Fields = nil

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		f.Add("description", fieldMessage(trimmed))
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return err
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected fault key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding fault field %q: %w", name, err)
		}
		f.Add(name, fieldMessage(raw))
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the fields as an object in their stored order.
func (f *Fault) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fld := range f.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(fld.Name)
		if err != nil {
			return nil, err
		}
		msg, err := json.Marshal(fld.Message)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(msg)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// fieldMessage renders a JSON value as display text: strings unquoted,
// null as empty, everything else verbatim.
func fieldMessage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// AsFault unwraps err into a *Fault.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
