package pricefeed

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Worker struct {
	service  *Service
	interval time.Duration
}

func NewWorker(service *Service, interval time.Duration) *Worker {
	return &Worker{
		service:  service,
		interval: interval,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	for {
		if err := w.service.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("refresh prices")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.interval):
		}
	}
}
