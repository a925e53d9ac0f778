package domain

import "time"

// ReminderFrequency is how often a user receives progress reminders.
type ReminderFrequency string

const (
	ReminderWeekly   ReminderFrequency = "weekly"
	ReminderBiweekly ReminderFrequency = "biweekly"
	ReminderMonthly  ReminderFrequency = "monthly"
)

// IsValid reports whether f is a known frequency.
func (f ReminderFrequency) IsValid() bool {
	switch f {
	case ReminderWeekly, ReminderBiweekly, ReminderMonthly:
		return true
	}
	return false
}

// ReminderSettings holds a user's reminder preferences.
type ReminderSettings struct {
	Enabled   bool              `json:"reminder_enabled"`
	Frequency ReminderFrequency `json:"reminder_frequency"`
	Day       string            `json:"reminder_day"`
	Time      string            `json:"reminder_time"`
}

// DefaultReminderSettings returns the settings applied when a field is absent.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		Enabled:   true,
		Frequency: ReminderWeekly,
		Day:       "monday",
		Time:      "18:00:00",
	}
}

// User is a row of the users table.
type User struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	Role                 string     `json:"role"`
	InvitationToken      *string    `json:"invitation_token"`
	InvitationSentAt     *time.Time `json:"invitation_sent_at"`
	InvitationAcceptedAt *time.Time `json:"invitation_accepted_at"`
	InvitedBy            *string    `json:"invited_by,omitempty"`
	ReminderSettings
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// IsInvitationAccepted reports whether the user's invitation reached its terminal state.
func (u User) IsInvitationAccepted() bool {
	return u.InvitationAcceptedAt != nil
}

// UserUpsert carries the fields written when a user signs in through OAuth.
type UserUpsert struct {
	ID    string
	Email string
	Name  string
}

// UserSummary is the public projection of a user used in composed responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Summary projects u to its public fields.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
