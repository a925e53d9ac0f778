package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/aliuyar1234/okrlaunch/internal/config"
	"github.com/aliuyar1234/okrlaunch/internal/metrics"
	"github.com/aliuyar1234/okrlaunch/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	metrics.MustRegister()

	st, err := sqlite.NewStore("file::memory:?cache=private")
	require.NoError(t, err)
	t.Cleanup(st.Close)
	require.NoError(t, st.ApplyMigrations(context.Background()))

	cfg := &config.Config{
		Env:               "dev",
		BaseURL:           "http://localhost:8080",
		DBDriver:          "sqlite",
		JWTSecret:         testSecret,
		RateLimitRPM:      120,
		SessionDays:       7,
		WorkflowTimeoutMS: 1000,
		CronSecret:        "cron-secret",
	}
	c := cache.NewMemoryStore()
	return NewRouter(cfg, st, c, NewServices(cfg, st, c))
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.CreateToken(userID, testSecret, 7)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t)

	rec, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)

	rec, env = serve(t, h, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ready","db":"ok","cache":"ok"}`, string(env.Data))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_MetricsExposesRoutePatterns(t *testing.T) {
	h := newTestRouter(t)
	serve(t, h, httptest.NewRequest(http.MethodGet, "/api/invite/unknown-token", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `route="/api/invite/{token}"`)
}

func TestRouter_InviteNotFound(t *testing.T) {
	h := newTestRouter(t)

	rec, env := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/invite/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, env.Success)
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	h := newTestRouter(t)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/wizard"},
		{http.MethodPost, "/api/wizard/actions"},
		{http.MethodPost, "/api/flows/research"},
		{http.MethodPost, "/auth/logout"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec, _ := serve(t, h, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`)))
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_WizardWithBearerSession(t *testing.T) {
	h := newTestRouter(t)
	authz := bearer(t, "leader-1")

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/actions", strings.NewReader(`{"type":"set_screen","payload":"workspace"}`))
	req.Header.Set("Authorization", authz)
	rec, env := serve(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/wizard", nil)
	req.Header.Set("Authorization", authz)
	rec, env = serve(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var state struct {
		Screen string `json:"screen"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	require.Equal(t, "workspace", state.Screen)

	// Another user starts from the initial state.
	req = httptest.NewRequest(http.MethodGet, "/api/wizard", nil)
	req.Header.Set("Authorization", bearer(t, "leader-2"))
	_, env = serve(t, h, req)
	require.NoError(t, json.Unmarshal(env.Data, &state))
	require.Equal(t, "kickoff", state.Screen)
}

func TestRouter_CookieSessionNeedsCSRF(t *testing.T) {
	h := newTestRouter(t)
	token, err := auth.CreateToken("leader-1", testSecret, 7)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/wizard/actions", strings.NewReader(`{"type":"reset"}`))
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	rec, _ := serve(t, h, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/wizard/actions", strings.NewReader(`{"type":"reset"}`))
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	req.AddCookie(&http.Cookie{Name: auth.CSRFCookieName, Value: "csrf-value"})
	req.Header.Set(auth.CSRFHeaderName, "csrf-value")
	rec, _ = serve(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CronRequiresSecret(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := serve(t, h, httptest.NewRequest(http.MethodGet, "/api/cron/send-okr-reminders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_FlowsWithoutWorkflowConfig(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/flows/research", strings.NewReader(`{"website_url":"example.com"}`))
	req.Header.Set("Authorization", bearer(t, "leader-1"))
	rec, env := serve(t, h, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Server configuration error", env.Error)
}

func TestRouter_SignInDisabledWithoutProvider(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := serve(t, h, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
