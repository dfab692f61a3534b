package server

import (
	"net/http"

	"remoting-login/internal/handlers"
	"remoting-login/internal/loginform"
	"remoting-login/internal/observability"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
)

func NewRouter(form *loginform.Form) http.Handler {
	_ = InitMetrics()

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	fh := &formHandler{form: form}
	r.Get("/", fh.show)
	r.Post("/", fh.submit)

	api := humachi.New(r, huma.DefaultConfig("Login Form", "1.0.0"))
	registerAPI(api, form)

	return r
}
