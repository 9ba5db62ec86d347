package proposal

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler drives the periodic lifecycle sweeps: opening voting windows,
// resolving ended proposals and sending deadline reminders.
type Scheduler struct {
	service *Service

	schedule       string
	deadlineWindow time.Duration
}

func NewScheduler(service *Service, schedule string, deadlineWindow time.Duration) *Scheduler {
	return &Scheduler{
		service:        service,
		schedule:       schedule,
		deadlineWindow: deadlineWindow,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if _, err := c.AddFunc(s.schedule, func() {
		s.sweep(ctx)
	}); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	c.Start()
	log.Info().Str("schedule", s.schedule).Msg("proposal scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()

	return nil
}

func (s *Scheduler) sweep(ctx context.Context) {
	now := time.Now()

	if err := s.service.ActivateDue(ctx, now); err != nil {
		log.Error().Err(err).Msg("activate due proposals")
	}

	if err := s.service.ResolveDue(ctx, now); err != nil {
		log.Error().Err(err).Msg("resolve due proposals")
	}

	if err := s.service.NotifyDeadlines(ctx, now, s.deadlineWindow); err != nil {
		log.Error().Err(err).Msg("notify deadlines")
	}
}
