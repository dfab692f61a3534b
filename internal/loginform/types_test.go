package loginform

import (
	"encoding/json"
	"testing"

	"remoting-login/internal/remoting"
)

func TestOutcomeStatusText(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{
			name:    "success",
			outcome: Outcome{Value: "3"},
			want:    "1+2=3",
		},
		{
			name:    "fractional success",
			outcome: Outcome{Value: "3.5"},
			want:    "1+2=3.5",
		},
		{
			name:    "fault",
			outcome: Outcome{Fault: remoting.NewFault("code", "401", "message", "bad auth")},
			want:    "Remoting error:\n401\nbad auth\n",
		},
		{
			name:    "empty fault",
			outcome: Outcome{Fault: &remoting.Fault{}},
			want:    "Remoting error:\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.outcome.StatusText(DefaultOperands); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestValueText(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "3", want: "3"},
		{raw: " 3.25 ", want: "3.25"},
		{raw: `"3"`, want: "3"},
		{raw: "null", want: "null"},
		{raw: "", want: "null"},
	}

	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			if got := valueText(json.RawMessage(tc.raw)); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if got := AwaitingResponse.String(); got != "awaiting_response" {
		t.Fatalf("unexpected %q", got)
	}
	if got := State(42).String(); got != "State(42)" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestCredentialsEncodeAsGatewayFields(t *testing.T) {
	raw, err := json.Marshal(Credentials{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `{"userid":"alice","password":"secret"}`; string(raw) != want {
		t.Fatalf("expected %s, got %s", want, raw)
	}
}
