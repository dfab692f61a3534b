package loginform

import (
	"fmt"
	"strings"

	"remoting-login/internal/remoting"
)

const (
	// CredentialsHeader is the header name gateways read credentials from.
	CredentialsHeader = "Credentials"
	// SumProcedure is the remote procedure invoked on submit.
	SumProcedure = "calc.sum"
	// FaultHeading starts the status text of a failed call.
	FaultHeading = "Remoting error:"
)

// Credentials are captured from the form fields at submit time.
type Credentials struct {
	Username string `json:"userid"`
	Password string `json:"password"`
}

// Operands are the two addends sent to the sum procedure.
type Operands struct {
	A int
	B int
}

// DefaultOperands are the operands every form uses unless overridden.
var DefaultOperands = Operands{A: 1, B: 2}

// State is where the form is in the submit cycle.
type State int

const (
	Idle State = iota
	AwaitingResponse
	CompletedSuccess
	CompletedFailure
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting_response"
	case CompletedSuccess:
		return "completed_success"
	case CompletedFailure:
		return "completed_failure"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the single result of one submit: a value or a fault.
type Outcome struct {
	Value string
	Fault *remoting.Fault
}

// Succeeded reports whether the call returned a value.
func (o Outcome) Succeeded() bool {
	return o.Fault == nil
}

// StatusText renders the outcome for the status region:
// "1+2=3" on success, or the fault heading followed by one line per field.
func (o Outcome) StatusText(ops Operands) string {
	if o.Fault == nil {
		return fmt.Sprintf("%d+%d=%s", ops.A, ops.B, o.Value)
	}

	var b strings.Builder
	b.WriteString(FaultHeading)
	b.WriteByte('\n')
	for _, f := range o.Fault.Fields {
		b.WriteString(f.Message)
		b.WriteByte('\n')
	}
	return b.String()
}
