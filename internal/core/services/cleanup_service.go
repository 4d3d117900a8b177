package services

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"sogecredit/internal/adapters/persistence/repositories"
)

// CleanupService purges expired refresh tokens on a nightly schedule
type CleanupService struct {
	refreshTokenRepo repositories.RefreshTokenRepository
	cron             *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(refreshTokenRepo repositories.RefreshTokenRepository) *CleanupService {
	return &CleanupService{
		refreshTokenRepo: refreshTokenRepo,
		cron:             cron.New(),
	}
}

// Start registers and starts the nightly purge job
func (s *CleanupService) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		s.purge(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Info("Token cleanup scheduled (daily at 03:00)")
	return nil
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *CleanupService) purge(ctx context.Context) {
	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		logrus.WithError(err).Error("Token cleanup failed")
		return
	}
	logrus.WithField("deleted", deleted).Info("Expired refresh tokens purged")
}
