package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/audit"
	"github.com/aliuyar1234/okrlaunch/internal/metrics"
	"github.com/aliuyar1234/okrlaunch/internal/workflow"
	"github.com/rs/zerolog/log"
)

// Triggers label where a dispatch came from.
const (
	TriggerHTTP     = "http"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

const defaultMessage = "Reminders processed"

// Sender runs the reminder workflow.
type Sender interface {
	SendReminders(ctx context.Context, triggerDate time.Time) (*workflow.SendRemindersResult, error)
}

type DispatchResult struct {
	Result    *workflow.SendRemindersResult `json:"result"`
	SentCount int                           `json:"sent_count"`
	Message   string                        `json:"message"`
}

// Dispatcher asks the reminder workflow to notify due users. The workflow
// decides who is due; nothing is retried here.
type Dispatcher struct {
	sender  Sender
	auditor *audit.Writer
	now     func() time.Time
}

func NewDispatcher(sender Sender, auditor *audit.Writer) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		auditor: auditor,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (d *Dispatcher) Run(ctx context.Context, trigger string) (*DispatchResult, error) {
	start := d.now()
	log.Info().Str("trigger", trigger).Msg("Starting reminder dispatch")

	res, err := d.sender.SendReminders(ctx, start)
	if err != nil {
		metrics.ReminderDispatchesTotal.WithLabelValues(trigger, "error").Inc()
		log.Error().Err(err).Str("trigger", trigger).Msg("Reminder dispatch failed")
		return nil, fmt.Errorf("failed to send reminders: %w", err)
	}

	out := &DispatchResult{Result: res, SentCount: res.SentCount, Message: res.Message}
	if out.Message == "" {
		out.Message = defaultMessage
	}

	metrics.ReminderDispatchesTotal.WithLabelValues(trigger, "success").Inc()
	if out.SentCount > 0 {
		metrics.RemindersSentTotal.Add(float64(out.SentCount))
	}
	_ = d.auditor.LogRemindersDispatched(ctx, trigger, out.SentCount)

	log.Info().
		Str("trigger", trigger).
		Int("sent_count", out.SentCount).
		Dur("duration", time.Since(start)).
		Msg("Reminder dispatch completed")

	return out, nil
}
