package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// NewSchedule registers the dispatcher on a standard five-field cron spec
// evaluated in UTC. An empty spec returns nil.
func NewSchedule(spec string, d *Dispatcher, timeout time.Duration) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Reminder job panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := d.Run(ctx, TriggerSchedule); err != nil {
			log.Error().Err(err).Msg("Reminder job failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminder job: %w", err)
	}

	return c, nil
}
