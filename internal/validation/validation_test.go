package validation

import (
	"testing"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	require.NoError(t, ValidateEmail("ada@example.com"))
	require.ErrorIs(t, ValidateEmail(""), ErrInvalidEmail)
	require.ErrorIs(t, ValidateEmail("not-an-email"), ErrInvalidEmail)
	require.ErrorIs(t, ValidateEmail("Ada <ada@example.com>"), ErrInvalidEmail)
	require.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.com "))
}

func TestNormalizeReminderSettings(t *testing.T) {
	got, err := NormalizeReminderSettings(domain.ReminderSettings{
		Enabled:   true,
		Frequency: "Biweekly",
		Day:       "Friday",
		Time:      "09:30",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ReminderBiweekly, got.Frequency)
	require.Equal(t, "friday", got.Day)
	require.Equal(t, "09:30:00", got.Time)

	_, err = NormalizeReminderSettings(domain.DefaultReminderSettings())
	require.NoError(t, err)

	bad := domain.DefaultReminderSettings()
	bad.Frequency = "daily"
	_, err = NormalizeReminderSettings(bad)
	require.ErrorIs(t, err, ErrInvalidFrequency)

	bad = domain.DefaultReminderSettings()
	bad.Day = "someday"
	_, err = NormalizeReminderSettings(bad)
	require.ErrorIs(t, err, ErrInvalidDay)

	bad = domain.DefaultReminderSettings()
	bad.Time = "25:00:00"
	_, err = NormalizeReminderSettings(bad)
	require.ErrorIs(t, err, ErrInvalidTime)
}

func TestNormalizeWebsiteURL(t *testing.T) {
	got, err := NormalizeWebsiteURL("acme.com")
	require.NoError(t, err)
	require.Equal(t, "https://acme.com", got)

	got, err = NormalizeWebsiteURL("http://acme.com/about")
	require.NoError(t, err)
	require.Equal(t, "http://acme.com/about", got)

	_, err = NormalizeWebsiteURL("   ")
	require.ErrorIs(t, err, ErrInvalidURL)
}

func TestValidateObjectives(t *testing.T) {
	require.NoError(t, ValidateObjectives(nil))
	require.NoError(t, ValidateObjectives([]domain.Objective{{
		Title:      "Grow",
		KeyResults: []domain.KeyResult{{Title: "ARR"}},
	}}))
	require.ErrorIs(t, ValidateObjectives([]domain.Objective{{Title: " "}}), ErrInvalidObjectives)
	require.Error(t, ValidateObjectives([]domain.Objective{{
		Title:      "Grow",
		KeyResults: []domain.KeyResult{{Title: ""}},
	}}))
}
