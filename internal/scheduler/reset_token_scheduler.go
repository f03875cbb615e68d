package scheduler

import (
	"github.com/robfig/cron/v3"

	"github.com/shopit-dev/shopit-backend/internal/app/repository"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
)

// ResetTokenScheduler periodically clears expired password reset tokens
// so stale hashes do not accumulate on user records.
type ResetTokenScheduler struct {
	cron     *cron.Cron
	userRepo repository.UserRepository
}

func NewResetTokenScheduler(userRepo repository.UserRepository) *ResetTokenScheduler {
	return &ResetTokenScheduler{
		cron:     cron.New(),
		userRepo: userRepo,
	}
}

// Start schedules the hourly cleanup job.
func (s *ResetTokenScheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		cleared, err := s.userRepo.ClearExpiredResetTokens()
		if err != nil {
			logger.Error("Failed to clear expired reset tokens", err)
			return
		}
		if cleared > 0 {
			logger.Info("Cleared expired reset tokens", map[string]interface{}{
				"count": cleared,
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for reset token cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Reset token cleanup scheduler started (hourly)")

	return nil
}

// Stop halts the scheduler. Running jobs finish before Stop returns the
// context, but we do not wait on them here.
func (s *ResetTokenScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Reset token cleanup scheduler stopped")
}
