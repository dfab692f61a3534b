package server

import (
	"context"
	"net/http"

	"remoting-login/internal/loginform"

	"github.com/danielgtaylor/huma/v2"
)

// SubmitInput is the JSON body of POST /api/submit. Both fields are
// optional and forwarded as-is.
type SubmitInput struct {
	Body struct {
		Username string `json:"username,omitempty" doc:"Login name sent as userid"`
		Password string `json:"password,omitempty" doc:"Password sent with the credentials header"`
	}
}

// StatusBody mirrors the status region of the form.
type StatusBody struct {
	Status string `json:"status" doc:"Status text as shown below the form"`
	State  string `json:"state" enum:"idle,awaiting_response,completed_success,completed_failure"`
}

// StatusOutput wraps StatusBody for huma.
type StatusOutput struct {
	Body StatusBody
}

func registerAPI(api huma.API, form *loginform.Form) {
	huma.Register(api, huma.Operation{
		OperationID: "submit-login",
		Method:      http.MethodPost,
		Path:        "/api/submit",
		Summary:     "Submit credentials and call calc.sum",
		Tags:        []string{"login"},
	}, func(ctx context.Context, in *SubmitInput) (*StatusOutput, error) {
		creds := loginform.Credentials{Username: in.Body.Username, Password: in.Body.Password}

		out, err := form.Submit(ctx, creds).Wait(ctx)
		if err != nil {
			submitsTotal.WithLabelValues(outcomeAbandoned).Inc()
			return nil, huma.Error504GatewayTimeout("gateway did not answer before the request ended", err)
		}
		countOutcome(out)

		state := loginform.CompletedSuccess
		if !out.Succeeded() {
			state = loginform.CompletedFailure
		}
		return &StatusOutput{Body: StatusBody{
			Status: out.StatusText(form.Operands()),
			State:  state.String(),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Current status of the form",
		Tags:        []string{"login"},
	}, func(ctx context.Context, _ *struct{}) (*StatusOutput, error) {
		return &StatusOutput{Body: StatusBody{
			Status: form.Status(),
			State:  form.State().String(),
		}}, nil
	})
}
