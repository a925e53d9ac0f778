package okrs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore("file::memory:?cache=private")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.ApplyMigrations(context.Background()))
	return s
}

func seedUserWithPlans(t *testing.T, s *sqlite.Store, id string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, domain.User{ID: id, Email: id + "@example.com", Name: "User " + id, Role: "CEO"}))

	base := time.Now().Add(-time.Hour)
	_, err := s.OKRs().Create(ctx, domain.OKRGeneration{
		UserID: id, CompanyName: "Old", OKRs: []domain.Objective{}, IsDraft: false, CreatedAt: base,
	})
	require.NoError(t, err)
	_, err = s.OKRs().Create(ctx, domain.OKRGeneration{
		UserID: id, CompanyName: "New", OKRs: []domain.Objective{{Title: "O", KeyResults: []domain.KeyResult{}}}, IsDraft: true, CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)
}

func serve(t *testing.T, svc *Service, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/api/okr/{userId}", HandleGetLatest(svc))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleGetLatest(t *testing.T) {
	s := newTestStore(t)
	seedUserWithPlans(t, s, "u1")
	svc := NewService(s)

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/okr/u1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "New", body.Data["company_name"])
	require.Equal(t, "u1", body.Data["user_id"])
	require.Equal(t, true, body.Data["is_draft"])
	user := body.Data["user"].(map[string]any)
	require.Equal(t, "User u1", user["name"])
	require.Equal(t, "CEO", user["role"])
}

func TestHandleGetLatest_SessionOverridesPath(t *testing.T) {
	s := newTestStore(t)
	seedUserWithPlans(t, s, "u1")
	seedUserWithPlans(t, s, "u2")
	svc := NewService(s)

	req := httptest.NewRequest(http.MethodGet, "/api/okr/u1", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "u2", auth.SourceBearer))
	rec := serve(t, svc, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"user_id":"u2"`)
}

func TestHandleGetLatest_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, domain.User{ID: "empty", Email: "e@example.com"}))
	svc := NewService(s)

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/okr/nobody", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "User not found")

	rec = serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/okr/empty", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "OKR not found for user")
}
