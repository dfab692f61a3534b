package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"remoting-login/internal/gatewaytest"
	"remoting-login/internal/loginform"
	"remoting-login/internal/observability"
	"remoting-login/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, reply gatewaytest.GatewayReply) (http.Handler, *gatewaytest.Gateway, *loginform.Form) {
	t.Helper()

	oldLogger := observability.Logger
	observability.Logger = zap.NewNop()
	t.Cleanup(func() { observability.Logger = oldLogger })

	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing server metrics: %v", err)
	}

	gw := gatewaytest.NewGateway(t, reply)
	form := loginform.New(gw.URL, loginform.WithLogger(zap.NewNop()))
	return NewRouter(form), gw, form
}

func postForm(username, password string) *http.Request {
	return testutil.NewFormRequest("/", url.Values{"username": {username}, "password": {password}})
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t, gatewaytest.SumReply())

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/health", nil), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestLoginPageRendersEmptyForm(t *testing.T) {
	router, gw, _ := newTestRouter(t, gatewaytest.SumReply())

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, want := range []string{
		`name="username"`,
		`name="password" type="password"`,
		`<button type="submit">`,
		`<textarea id="status" readonly aria-label="Status"></textarea>`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	if got := w.Result().Header.Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Fatalf("expected no-store caching, got %q", got)
	}
	if n := len(gw.Requests()); n != 0 {
		t.Fatalf("expected no remote call on page load, got %d", n)
	}
}

func TestLoginPostRendersResult(t *testing.T) {
	router, gw, form := newTestRouter(t, gatewaytest.SumReply())

	w := testutil.ExecuteRequest(postForm("alice", "secret"), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if body := w.Body.String(); !strings.Contains(body, ">1+2=3</textarea>") {
		t.Fatalf("expected status 1+2=3 in page, got:\n%s", body)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Fatal("password must not be echoed back")
	}
	if form.Status() != "1+2=3" {
		t.Fatalf("expected form status %q, got %q", "1+2=3", form.Status())
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}
	if ids := gw.RequestIDs(); len(ids) != 1 || ids[0] != requestID {
		t.Fatalf("expected gateway to see request id %q, got %v", requestID, ids)
	}
}

func TestLoginPostRendersFault(t *testing.T) {
	router, _, _ := newTestRouter(t, gatewaytest.FaultReply(`{"code":"401","message":"bad auth"}`))

	w := testutil.ExecuteRequest(postForm("alice", "wrong"), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if body := w.Body.String(); !strings.Contains(body, ">Remoting error:\n401\nbad auth\n</textarea>") {
		t.Fatalf("expected fault block in page, got:\n%s", body)
	}
}

func TestAPISubmitAndStatus(t *testing.T) {
	router, gw, _ := newTestRouter(t, gatewaytest.SumReply())

	w := testutil.ExecuteRequest(testutil.NewJSONRequest("/api/submit", `{"username":"alice","password":"secret"}`), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var body StatusBody
	testutil.DecodeJSONBody(t, w.Result().Body, &body)
	if body.Status != "1+2=3" || body.State != "completed_success" {
		t.Fatalf("unexpected submit response %#v", body)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/api/status", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	testutil.DecodeJSONBody(t, w.Result().Body, &body)
	if body.Status != "1+2=3" || body.State != "completed_success" {
		t.Fatalf("unexpected status response %#v", body)
	}

	if n := len(gw.Requests()); n != 1 {
		t.Fatalf("expected 1 remote call, got %d", n)
	}
}

func TestAPISubmitAcceptsEmptyCredentials(t *testing.T) {
	router, gw, _ := newTestRouter(t, gatewaytest.SumReply())

	w := testutil.ExecuteRequest(testutil.NewJSONRequest("/api/submit", `{}`), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	value, ok := gw.Requests()[0].Headers[0].Value.(map[string]any)
	if !ok || value["userid"] != "" || value["password"] != "" {
		t.Fatalf("expected empty credentials to be forwarded, got %#v", gw.Requests()[0].Headers)
	}
}

func TestAPIStatusBeforeSubmit(t *testing.T) {
	router, _, _ := newTestRouter(t, gatewaytest.SumReply())

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/api/status", nil), router)

	var body StatusBody
	testutil.DecodeJSONBody(t, w.Result().Body, &body)
	if body.Status != "" || body.State != "idle" {
		t.Fatalf("unexpected status response %#v", body)
	}
}

func TestMetricsExposesSubmitCounter(t *testing.T) {
	router, _, _ := newTestRouter(t, gatewaytest.SumReply())

	testutil.ExecuteRequest(postForm("alice", "secret"), router)
	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	raw, _ := io.ReadAll(w.Result().Body)
	if !strings.Contains(string(raw), `loginform_submits_total{outcome="success"}`) {
		t.Fatal("expected loginform_submits_total in metrics output")
	}
}
