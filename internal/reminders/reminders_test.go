package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/audit"
	"github.com/aliuyar1234/okrlaunch/internal/auth"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store/sqlite"
	"github.com/aliuyar1234/okrlaunch/internal/validation"
	"github.com/aliuyar1234/okrlaunch/internal/workflow"
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

func ptr[T any](v T) *T { return &v }

type fakeSender struct {
	calls  []time.Time
	result *workflow.SendRemindersResult
	err    error
}

func (f *fakeSender) SendReminders(_ context.Context, at time.Time) (*workflow.SendRemindersResult, error) {
	f.calls = append(f.calls, at)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestSettingsService_DefaultsAndNormalization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, domain.User{
		ID:    "u1",
		Email: "u1@example.com",
		ReminderSettings: domain.ReminderSettings{
			Enabled: false, Frequency: domain.ReminderMonthly, Day: "friday", Time: "09:00:00",
		},
	}))
	svc := NewSettingsService(s.Users(), audit.NewWriter(s.Audit()))

	user, err := svc.Update(ctx, UpdateSettingsRequest{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, domain.DefaultReminderSettings(), user.ReminderSettings)

	user, err = svc.Update(ctx, UpdateSettingsRequest{
		UserID:    "u1",
		Enabled:   ptr(false),
		Frequency: ptr("Biweekly"),
		Day:       ptr("WEDNESDAY"),
		Time:      ptr("07:30"),
	})
	require.NoError(t, err)
	require.False(t, user.Enabled)
	require.Equal(t, domain.ReminderBiweekly, user.Frequency)
	require.Equal(t, "wednesday", user.Day)
	require.Equal(t, "07:30:00", user.Time)
}

func TestSettingsService_Errors(t *testing.T) {
	s := newTestStore(t)
	svc := NewSettingsService(s.Users(), nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, UpdateSettingsRequest{})
	require.ErrorIs(t, err, ErrUserIDRequired)

	_, err = svc.Update(ctx, UpdateSettingsRequest{UserID: "u1", Frequency: ptr("daily")})
	require.ErrorIs(t, err, validation.ErrInvalidFrequency)

	_, err = svc.Update(ctx, UpdateSettingsRequest{UserID: "u1", Time: ptr("25:00")})
	require.ErrorIs(t, err, validation.ErrInvalidTime)

	user, err := svc.Update(ctx, UpdateSettingsRequest{UserID: "missing"})
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestHandleUpdateSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Users().Create(ctx, domain.User{ID: "u1", Email: "u1@example.com"}))
	require.NoError(t, s.Users().Create(ctx, domain.User{ID: "u2", Email: "u2@example.com"}))
	h := HandleUpdateSettings(NewSettingsService(s.Users(), nil))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"u1","reminder_day":"sunday"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		Data    *domain.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, "sunday", body.Data.Day)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"ghost"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"data":null`)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reminder_day":"funday","user_id":"u1"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The session user wins over the body.
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"u1","reminder_day":"tuesday"}`))
	req = req.WithContext(auth.WithUserID(req.Context(), "u2", auth.SourceCookie))
	rec = httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	u2, err := s.Users().GetByID(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, "tuesday", u2.Day)
	u1, err := s.Users().GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "sunday", u1.Day)
}

func TestDispatcher_Run(t *testing.T) {
	sender := &fakeSender{result: &workflow.SendRemindersResult{Success: true, SentCount: 2}}
	d := NewDispatcher(sender, nil)
	fixed := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return fixed }

	res, err := d.Run(context.Background(), TriggerCLI)
	require.NoError(t, err)
	require.Equal(t, 2, res.SentCount)
	require.Equal(t, "Reminders processed", res.Message)
	require.Equal(t, []time.Time{fixed}, sender.calls)

	sender.result = &workflow.SendRemindersResult{Message: "3 reminders sent", SentCount: 3}
	res, err = d.Run(context.Background(), TriggerCLI)
	require.NoError(t, err)
	require.Equal(t, "3 reminders sent", res.Message)
}

func TestHandleCron(t *testing.T) {
	sender := &fakeSender{result: &workflow.SendRemindersResult{Success: true, SentCount: 5}}
	d := NewDispatcher(sender, nil)

	call := func(secret, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/cron/send-okr-reminders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		HandleCron(d, secret)(rec, req)
		return rec
	}

	rec := call("", "Bearer anything")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Server configuration error")

	rec = call("s3cret", "Bearer wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call("s3cret", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, sender.calls)

	rec = call("s3cret", "Bearer s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	var body CronResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Equal(t, 5, body.SentCount)
	require.Equal(t, "Reminders processed", body.Message)
	require.NotEmpty(t, body.Timestamp)
	require.NotNil(t, body.Result)

	sender.err = errors.New("gateway down")
	rec = call("s3cret", "Bearer s3cret")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), `"success":false`)
}

func TestNewSchedule(t *testing.T) {
	d := NewDispatcher(&fakeSender{}, nil)

	c, err := NewSchedule("", d, time.Minute)
	require.NoError(t, err)
	require.Nil(t, c)

	c, err = NewSchedule("0 18 * * *", d, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Len(t, c.Entries(), 1)

	_, err = NewSchedule("not a schedule", d, time.Minute)
	require.Error(t, err)
}
