package wizard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/cache"
	"github.com/stretchr/testify/require"
)

func TestRepository_ApplyAndLoad(t *testing.T) {
	repo := NewRepository(cache.NewMemoryStore(), time.Hour)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	ctx := context.Background()

	s, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, Initial(), s)

	s, err = repo.Apply(ctx, "u1",
		action(t, ActionSetPlanningPeriod, "Q2 2026"),
		action(t, ActionSetScreen, ScreenWorkspace),
	)
	require.NoError(t, err)
	require.Equal(t, fixed, s.UpdatedAt)

	loaded, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Q2 2026", loaded.PlanningPeriod)
	require.Equal(t, ScreenWorkspace, loaded.Screen)

	other, err := repo.Load(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, other.PlanningPeriod)
}

func TestRepository_FailedBatchIsNotSaved(t *testing.T) {
	repo := NewRepository(cache.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	_, err := repo.Apply(ctx, "u1",
		action(t, ActionSetPlanningPeriod, "Q2 2026"),
		Action{Type: "bogus"},
	)
	require.ErrorIs(t, err, ErrUnknownAction)

	s, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, s.PlanningPeriod)

	_, err = repo.Load(ctx, "")
	require.ErrorIs(t, err, ErrUserIDRequired)
}

func TestHandlers(t *testing.T) {
	repo := NewRepository(cache.NewMemoryStore(), time.Hour)

	call := func(h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/", strings.NewReader(body))
		req = req.WithContext(auth.WithUserID(req.Context(), "u1", auth.SourceBearer))
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	rec := call(HandleApply(repo), http.MethodPost, `{"type":"set_planning_period","payload":"Q4 2026"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(HandleApply(repo), http.MethodPost, `{"actions":[{"type":"add_invite","payload":{"invite_id":"i1","email":"a@b.c","status":"queued"}}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(HandleGet(repo), http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data State `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Q4 2026", body.Data.PlanningPeriod)
	require.Len(t, body.Data.Invites, 1)
	require.Equal(t, InviteQueued, body.Data.Invites[0].Status)

	rec = call(HandleApply(repo), http.MethodPost, `{"type":"unknown"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(HandleApply(repo), http.MethodPost, `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
