package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindAll() ([]model.User, error)
	Update(user *model.User) error
	Delete(id uint) error

	// Password reset state. Lookups match on the token hash and require the
	// expiry to still be in the future, so an expired token is
	// indistinguishable from an absent one.
	FindByResetTokenHash(tokenHash string) (*model.User, error)
	SetResetToken(userID uint, tokenHash string, expiresAt time.Time) error
	ClearResetToken(userID uint) error
	ConsumeResetToken(userID uint, tokenHash, newPasswordHash string) (bool, error)
	ClearExpiredResetTokens() (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		logger.Error("Failed to find user by email in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Order("id ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users from database", err, nil)
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
		})
		return err
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.User{}, id).Error; err != nil {
		logger.Error("Failed to delete user from database", err, map[string]interface{}{
			"user_id": id,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindByResetTokenHash(tokenHash string) (*model.User, error) {
	var user model.User
	err := r.db.
		Where("reset_password_token = ? AND reset_password_expires_at > ?", tokenHash, time.Now()).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetResetToken(userID uint, tokenHash string, expiresAt time.Time) error {
	logger.Debug("Setting password reset token in database", map[string]interface{}{
		"user_id": userID,
	})

	err := r.db.Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_password_token":      tokenHash,
			"reset_password_expires_at": expiresAt,
		}).Error
	if err != nil {
		logger.Error("Failed to set password reset token in database", err, map[string]interface{}{
			"user_id": userID,
		})
	}
	return err
}

func (r *userRepository) ClearResetToken(userID uint) error {
	logger.Debug("Clearing password reset token in database", map[string]interface{}{
		"user_id": userID,
	})

	err := r.db.Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_password_token":      nil,
			"reset_password_expires_at": nil,
		}).Error
	if err != nil {
		logger.Error("Failed to clear password reset token in database", err, map[string]interface{}{
			"user_id": userID,
		})
	}
	return err
}

// ConsumeResetToken atomically sets the new password hash and clears the
// reset state, guarded on the token hash still matching. The returned bool
// reports whether a row was updated; false means another request consumed
// or superseded the token first.
func (r *userRepository) ConsumeResetToken(userID uint, tokenHash, newPasswordHash string) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND reset_password_token = ?", userID, tokenHash).
		Updates(map[string]interface{}{
			"password_hash":             newPasswordHash,
			"reset_password_token":      nil,
			"reset_password_expires_at": nil,
		})
	if result.Error != nil {
		logger.Error("Failed to consume password reset token in database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ClearExpiredResetTokens drops reset state whose window has passed.
// Housekeeping only; lookups already check expiry.
func (r *userRepository) ClearExpiredResetTokens() (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("reset_password_expires_at IS NOT NULL AND reset_password_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{
			"reset_password_token":      nil,
			"reset_password_expires_at": nil,
		})
	if result.Error != nil {
		logger.Error("Failed to clear expired reset tokens from database", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
