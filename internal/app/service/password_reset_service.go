package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/repository"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
	"github.com/shopit-dev/shopit-backend/pkg/mailer"
	"github.com/shopit-dev/shopit-backend/pkg/util"
)

var (
	ErrEmailNotRegistered = errors.New("email is not registered")
	// ErrInvalidResetToken covers absent, expired, consumed, and superseded
	// tokens alike; callers cannot tell which, so a probe learns nothing
	// about token existence.
	ErrInvalidResetToken = errors.New("reset token is invalid or has expired")
	ErrPasswordMismatch  = errors.New("password confirmation does not match")
)

// ResetTokenExpiry bounds the window in which an intercepted reset link
// stays useful.
const ResetTokenExpiry = 30 * time.Minute

type PasswordResetService interface {
	RequestReset(email, scheme, host string) error
	ResetPassword(rawToken, newPassword, confirmPassword string) (*model.User, string, error)
}

type passwordResetService struct {
	userRepo        repository.UserRepository
	notifier        mailer.Notifier
	jwtSecret       string
	sessionLifetime time.Duration
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	notifier mailer.Notifier,
	jwtSecret string,
	sessionLifetime time.Duration,
) PasswordResetService {
	return &passwordResetService{
		userRepo:        userRepo,
		notifier:        notifier,
		jwtSecret:       jwtSecret,
		sessionLifetime: sessionLifetime,
	}
}

// RequestReset issues a fresh reset token for the account and mails the
// reset link. Only the SHA-256 hash of the token is persisted; the raw
// token travels solely in the email. Requesting again overwrites any
// earlier token. If delivery fails the reset state is rolled back so no
// dangling active token survives.
func (s *passwordResetService) RequestReset(email, scheme, host string) error {
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return ErrEmailNotRegistered
		}
		logger.Error("Failed to find user for password reset", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	rawToken, err := util.GenerateResetToken()
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	expiresAt := time.Now().Add(ResetTokenExpiry)
	if err := s.userRepo.SetResetToken(user.ID, util.HashResetToken(rawToken), expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/password/reset/%s", scheme, host, rawToken)
	msg := mailer.Message{
		To:      user.Email,
		Subject: "ShopIT Password Reset",
		Body: fmt.Sprintf(
			"Your password reset link is (valid for 30 minutes):\n\n%s\n\nIf you did not request this, please ignore this email.",
			resetURL,
		),
	}

	if err := s.notifier.Send(msg); err != nil {
		logger.Error("Failed to send reset email, rolling back reset token", err, map[string]interface{}{
			"email": email,
		})
		if clearErr := s.userRepo.ClearResetToken(user.ID); clearErr != nil {
			logger.Error("Failed to roll back reset token", clearErr, map[string]interface{}{
				"user_id": user.ID,
			})
		}
		return fmt.Errorf("send reset email: %w", err)
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"email":      email,
		"expires_at": expiresAt,
	})
	return nil
}

// ResetPassword consumes a reset token and sets the new password. The
// token is accepted only if its hash matches an unexpired record, and the
// consume is guarded by an atomic update, so a token can be spent at most
// once. On success the user is logged in with a fresh session token.
func (s *passwordResetService) ResetPassword(rawToken, newPassword, confirmPassword string) (*model.User, string, error) {
	logger.Info("Processing password reset with token")

	tokenHash := util.HashResetToken(rawToken)
	user, err := s.userRepo.FindByResetTokenHash(tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Reset token invalid or expired")
			return nil, "", ErrInvalidResetToken
		}
		logger.Error("Failed to look up reset token", err, nil)
		return nil, "", err
	}

	if newPassword != confirmPassword {
		logger.Warn("Password reset failed: confirmation mismatch", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrPasswordMismatch
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	consumed, err := s.userRepo.ConsumeResetToken(user.ID, tokenHash, hashedPassword)
	if err != nil {
		return nil, "", err
	}
	if !consumed {
		// Another request consumed or superseded the token between lookup
		// and update.
		logger.Warn("Reset token was consumed concurrently", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidResetToken
	}

	token, err := util.GenerateToken(user.ID, s.jwtSecret, s.sessionLifetime)
	if err != nil {
		logger.Error("Failed to generate session token after reset", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return user, token, nil
}
