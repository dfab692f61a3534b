package server

import (
	"errors"
	"net/http"

	"remoting-login/internal/handlers"
	"remoting-login/internal/loginform"
	"remoting-login/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("server")

type formHandler struct {
	form *loginform.Form
}

// show handles GET /: the form with the current status.
func (h *formHandler) show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageData{Status: h.form.Status()})
}

// submit handles POST /. It submits the fields and waits for the outcome
// while the browser request is alive.
func (h *formHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "loginform.submit",
		trace.WithAttributes(
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
			attribute.String("remoting.gateway", h.form.Address()),
		),
	)
	defer span.End()

	if err := r.ParseForm(); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "submit", "invalid form submission", err, http.StatusBadRequest, w)
		return
	}

	creds := loginform.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	out, err := h.form.Submit(ctx, creds).Wait(ctx)
	if err != nil {
		submitsTotal.WithLabelValues(outcomeAbandoned).Inc()
		if !errors.Is(err, r.Context().Err()) {
			logger.Warn("submit wait failed", zap.Error(err))
		}
		return
	}
	countOutcome(out)

	h.render(w, r, pageData{
		Username: creds.Username,
		Status:   out.StatusText(h.form.Operands()),
	})
}

func (h *formHandler) render(w http.ResponseWriter, r *http.Request, data pageData) {
	handlers.SetNoCacheHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := pageTemplate.Execute(w, data); err != nil {
		observability.LoggerWithTrace(r.Context()).Error("rendering login page", zap.Error(err))
	}
}

func countOutcome(out loginform.Outcome) {
	if out.Succeeded() {
		submitsTotal.WithLabelValues(outcomeSuccess).Inc()
		return
	}
	submitsTotal.WithLabelValues(outcomeFailure).Inc()
}
