package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"github.com/aliuyar1234/okrlaunch/internal/domain"
)

var (
	// ErrInvalidEmail is returned when an email address cannot be parsed
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidFrequency is returned for an unknown reminder frequency
	ErrInvalidFrequency = errors.New("reminder_frequency must be one of: weekly, biweekly, monthly")

	// ErrInvalidDay is returned for an unknown weekday
	ErrInvalidDay = errors.New("reminder_day must be a day of the week")

	// ErrInvalidTime is returned when reminder_time is not HH:MM or HH:MM:SS
	ErrInvalidTime = errors.New("reminder_time must be in HH:MM:SS format")

	// ErrInvalidURL is returned when a website URL cannot be normalized
	ErrInvalidURL = errors.New("invalid website URL")

	// ErrInvalidObjectives is returned when an OKR plan is missing titles
	ErrInvalidObjectives = errors.New("invalid objectives")

	// timeRegex accepts 24h clock times with optional seconds
	timeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

	weekdays = map[string]bool{
		"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
		"friday": true, "saturday": true, "sunday": true,
	}
)

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address without display name
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 320 {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeReminderSettings validates s and returns it with day lowercased
// and time expanded to HH:MM:SS.
func NormalizeReminderSettings(s domain.ReminderSettings) (domain.ReminderSettings, error) {
	s.Frequency = domain.ReminderFrequency(strings.ToLower(strings.TrimSpace(string(s.Frequency))))
	if !s.Frequency.IsValid() {
		return s, ErrInvalidFrequency
	}

	s.Day = strings.ToLower(strings.TrimSpace(s.Day))
	if !weekdays[s.Day] {
		return s, ErrInvalidDay
	}

	s.Time = strings.TrimSpace(s.Time)
	if !timeRegex.MatchString(s.Time) {
		return s, ErrInvalidTime
	}
	if len(s.Time) == len("15:04") {
		s.Time += ":00"
	}

	return s, nil
}

// NormalizeWebsiteURL prefixes https:// when no scheme is given and checks
// that the result has a host.
func NormalizeWebsiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " ") {
		return "", ErrInvalidURL
	}
	return raw, nil
}

// ValidateObjectives checks the minimal shape of an OKR plan.
func ValidateObjectives(objectives []domain.Objective) error {
	for i, o := range objectives {
		if strings.TrimSpace(o.Title) == "" {
			return fmt.Errorf("%w: objective %d: title is required", ErrInvalidObjectives, i+1)
		}
		for j, kr := range o.KeyResults {
			if strings.TrimSpace(kr.Title) == "" {
				return fmt.Errorf("%w: objective %d key result %d: title is required", ErrInvalidObjectives, i+1, j+1)
			}
		}
	}
	return nil
}
