package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/repository"
	"github.com/shopit-dev/shopit-backend/pkg/logger"
	"github.com/shopit-dev/shopit-backend/pkg/util"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWrongOldPassword   = errors.New("old password is incorrect")
)

// Placeholder avatar assigned at registration until the user uploads one.
const defaultAvatarURL = "https://shopit-avatars.s3.amazonaws.com/defaults/avatar.png"

type AuthService interface {
	Register(name, email, password string) (*model.User, string, error)
	Login(email, password string) (*model.User, string, error)
	GetUserByID(id uint) (*model.User, error)
	UpdateProfile(userID uint, name, email string) (*model.User, error)
	UpdateAvatar(userID uint, avatarURL string) (*model.User, error)
	UpdatePassword(userID uint, oldPassword, newPassword string) (string, error)

	// Admin operations
	ListUsers() ([]model.User, error)
	UpdateUser(id uint, name, email string, role model.UserRole) (*model.User, error)
}

type authService struct {
	userRepo        repository.UserRepository
	jwtSecret       string
	sessionLifetime time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	jwtSecret string,
	sessionLifetime time.Duration,
) AuthService {
	return &authService{
		userRepo:        userRepo,
		jwtSecret:       jwtSecret,
		sessionLifetime: sessionLifetime,
	}
}

func (s *authService) Register(name, email, password string) (*model.User, string, error) {
	logger.Info("Attempting user registration", map[string]interface{}{
		"email": email,
		"name":  name,
	})

	existingUser, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}
	if existingUser != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": email,
		})
		return nil, "", ErrEmailAlreadyExists
	}

	hashedPassword, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		AvatarURL:    defaultAvatarURL,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	token, err := util.GenerateToken(user.ID, s.jwtSecret, s.sessionLifetime)
	if err != nil {
		logger.Error("Failed to generate session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, token, nil
}

// Login verifies credentials and issues a fresh session token. Unknown
// email and wrong password are reported as distinct failures; the API
// deliberately tells the caller which check failed.
func (s *authService) Login(email, password string) (*model.User, string, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, "", ErrUserNotFound
		}
		logger.Error("Failed to find user", err, map[string]interface{}{
			"email": email,
		})
		return nil, "", err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"email":   email,
			"user_id": user.ID,
		})
		return nil, "", ErrInvalidPassword
	}

	token, err := util.GenerateToken(user.ID, s.jwtSecret, s.sessionLifetime)
	if err != nil {
		logger.Error("Failed to generate session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, "", err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})

	return user, token, nil
}

func (s *authService) GetUserByID(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("User not found", map[string]interface{}{
				"user_id": id,
			})
			return nil, ErrUserNotFound
		}
		logger.Error("Failed to fetch user", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}
	return user, nil
}

// emailTaken reports whether email belongs to a user other than excludeID.
func (s *authService) emailTaken(email string, excludeID uint) (bool, error) {
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		logger.Error("Failed to check existing user", err, map[string]interface{}{
			"email": email,
		})
		return false, err
	}
	return existing != nil && existing.ID != excludeID, nil
}

func (s *authService) UpdateProfile(userID uint, name, email string) (*model.User, error) {
	logger.Info("Updating user profile", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updated := false
	if name != "" && name != user.Name {
		user.Name = name
		updated = true
	}
	if email != "" && email != user.Email {
		taken, err := s.emailTaken(email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			logger.Warn("Profile update failed: email already exists", map[string]interface{}{
				"user_id": userID,
				"email":   email,
			})
			return nil, ErrEmailAlreadyExists
		}
		user.Email = email
		updated = true
	}

	if !updated {
		return user, nil
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User profile updated successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	return user, nil
}

func (s *authService) UpdateAvatar(userID uint, avatarURL string) (*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	user.AvatarURL = avatarURL
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user avatar", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return user, nil
}

// UpdatePassword changes the password after verifying the current one and
// re-issues the session token.
func (s *authService) UpdatePassword(userID uint, oldPassword, newPassword string) (string, error) {
	logger.Info("Updating user password", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}

	if !util.VerifyPassword(user.PasswordHash, oldPassword) {
		logger.Warn("Password update failed: old password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return "", ErrWrongOldPassword
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": userID,
		})
		return "", err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": userID,
		})
		return "", err
	}

	token, err := util.GenerateToken(user.ID, s.jwtSecret, s.sessionLifetime)
	if err != nil {
		logger.Error("Failed to generate session token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return "", err
	}

	logger.Info("User password updated successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	return token, nil
}

func (s *authService) ListUsers() ([]model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list users", err, nil)
		return nil, err
	}

	logger.Info("Users listed", map[string]interface{}{
		"count": len(users),
	})
	return users, nil
}

// UpdateUser is the administrator-side update; it is the only path that
// mutates a user's role.
func (s *authService) UpdateUser(id uint, name, email string, role model.UserRole) (*model.User, error) {
	logger.Info("Updating user as admin", map[string]interface{}{
		"user_id": id,
		"role":    role,
	})

	user, err := s.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" && email != user.Email {
		taken, err := s.emailTaken(email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			logger.Warn("Admin update failed: email already exists", map[string]interface{}{
				"user_id": id,
				"email":   email,
			})
			return nil, ErrEmailAlreadyExists
		}
		user.Email = email
	}
	if role != "" {
		user.Role = role
	}

	if err := s.userRepo.Update(user); err != nil {
		logger.Error("Failed to update user as admin", err, map[string]interface{}{
			"user_id": id,
		})
		return nil, err
	}

	logger.Info("User updated by admin", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return user, nil
}
