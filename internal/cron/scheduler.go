package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"testCraftBot/internal/pkg/logger/sl"
)

// ExpiredCodeSweeper удаляет просроченные и погашенные durable-записи
// кодов; ленивое удаление при чтении остаётся основным механизмом.
type ExpiredCodeSweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	sweeper ExpiredCodeSweeper
}

func New(log *slog.Logger, sweeper ExpiredCodeSweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		log:     log,
		sweeper: sweeper,
	}
}

func (s *Scheduler) Start() error {
	// раз в час; записи и так гасятся лениво при чтении
	_, err := s.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		deleted, err := s.sweeper.DeleteExpired(ctx)
		if err != nil {
			s.log.Error("failed to sweep expired verification codes", sl.Err(err))
			return
		}

		if deleted > 0 {
			s.log.Info("expired verification codes swept", slog.Int64("deleted", deleted))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("cron scheduler started")

	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("cron scheduler stopped")
}
