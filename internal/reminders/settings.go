package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliuyar1234/okrlaunch/internal/audit"
	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/aliuyar1234/okrlaunch/internal/store"
	"github.com/aliuyar1234/okrlaunch/internal/validation"
)

var ErrUserIDRequired = errors.New("user_id is required")

// UpdateSettingsRequest is the body of POST /api/user/reminder-settings.
// Absent fields take the defaults.
type UpdateSettingsRequest struct {
	UserID    string  `json:"user_id"`
	Enabled   *bool   `json:"reminder_enabled"`
	Frequency *string `json:"reminder_frequency"`
	Day       *string `json:"reminder_day"`
	Time      *string `json:"reminder_time"`
}

// Settings returns the requested settings with defaults applied.
func (r UpdateSettingsRequest) Settings() domain.ReminderSettings {
	s := domain.DefaultReminderSettings()
	if r.Enabled != nil {
		s.Enabled = *r.Enabled
	}
	if r.Frequency != nil {
		s.Frequency = domain.ReminderFrequency(*r.Frequency)
	}
	if r.Day != nil {
		s.Day = *r.Day
	}
	if r.Time != nil {
		s.Time = *r.Time
	}
	return s
}

type SettingsService struct {
	users   store.Users
	auditor *audit.Writer
}

func NewSettingsService(users store.Users, auditor *audit.Writer) *SettingsService {
	return &SettingsService{users: users, auditor: auditor}
}

// Update validates and persists the reminder settings. It returns a nil user
// without error when no user matches.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*domain.User, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	settings, err := validation.NormalizeReminderSettings(req.Settings())
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateReminderSettings(ctx, userID, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder settings: %w", err)
	}
	if user != nil {
		_ = s.auditor.LogReminderSettingsSaved(ctx, userID, settings)
	}
	return user, nil
}
