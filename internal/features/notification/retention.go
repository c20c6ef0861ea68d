package notification

import (
	"context"
	"time"

	"go-formflow/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RetentionSweeper deletes mailbox entries past the configured age on a
// cron schedule. Archived entries are swept like any other; deletion is
// the only hard-remove path besides the owner's explicit delete.
type RetentionSweeper struct {
	repo      NotificationRepository
	logger    *zap.Logger
	scheduler *cron.Cron
	ttl       time.Duration
	spec      string
}

func NewRetentionSweeper(repo NotificationRepository, cfg *config.Config, logger *zap.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		repo:   repo,
		logger: logger,
		ttl:    time.Duration(cfg.NotificationTTLDays) * 24 * time.Hour,
		spec:   cfg.NotificationSweepSpec,
	}
}

func (s *RetentionSweeper) Start() error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.scheduler.Start()
	return nil
}

func (s *RetentionSweeper) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *RetentionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.ttl)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("notification retention sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("notification retention sweep completed", zap.Int64("deleted", deleted))
	}
}
