package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/config"
	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/service"
	apperrors "github.com/shopit-dev/shopit-backend/internal/errors"
	"github.com/shopit-dev/shopit-backend/internal/middleware"
)

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
	cfg                  *config.Config
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService, cfg *config.Config) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
		cfg:                  cfg,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type AdminUpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Role  string `json:"role" binding:"omitempty,oneof=user admin"`
}

// sendToken writes the session cookie and the standard authenticated
// response body. The cookie is HTTP-only so document scripts never see
// the token; Secure is set outside development so it only travels over
// TLS in production.
func (ctrl *AuthController) sendToken(c *gin.Context, status int, user *model.User, token string) {
	maxAge := int(ctrl.cfg.JWT.SessionLifetime.Seconds())
	secure := ctrl.cfg.Server.Environment == "production"
	c.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", secure, true)

	c.JSON(status, gin.H{
		"success": true,
		"token":   token,
		"user":    userPayload(user),
	})
}

func userPayload(user *model.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"avatar_url": user.AvatarURL,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	}
}

// Register handles user registration
// POST /api/v1/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please provide a valid name, email and password")
		return
	}

	user, token, err := ctrl.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			log.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "An account with this email already exists")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	ctrl.sendToken(c, http.StatusCreated, user, token)
}

// Login handles user login
// POST /api/v1/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please provide email and password")
		return
	}

	user, token, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			log.Warn("Login failed: unknown email", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthUserNotFound, "Invalid email")
			return
		}
		if errors.Is(err, service.ErrInvalidPassword) {
			log.Warn("Login failed: wrong password", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidPassword, "Invalid password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	log.Info("Login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	ctrl.sendToken(c, http.StatusOK, user, token)
}

// Logout clears the session cookie
// GET /api/v1/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	// A negative max age makes the browser drop the cookie immediately.
	secure := ctrl.cfg.Server.Environment == "production"
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", secure, true)

	log.Info("User logged out", nil)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

// GetMe returns the authenticated user's profile
// GET /api/v1/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetUser(c)
	if !exists {
		log.Warn("Unauthorized access to GetMe endpoint", nil)
		apperrors.Unauthorized(c, "Login required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userPayload(user),
	})
}

// UpdateMe updates the authenticated user's profile
// PUT /api/v1/me
func (ctrl *AuthController) UpdateMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to UpdateMe endpoint", nil)
		apperrors.Unauthorized(c, "Login required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update profile request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid profile data")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "An account with this email already exists")
			return
		}
		log.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update profile")
		return
	}

	log.Info("Profile updated", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userPayload(user),
	})
}

// UpdatePassword changes the authenticated user's password
// PUT /api/v1/password/update
func (ctrl *AuthController) UpdatePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	user, exists := middleware.GetUser(c)
	if !exists {
		log.Warn("Unauthorized access to UpdatePassword endpoint", nil)
		apperrors.Unauthorized(c, "Login required")
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update password request", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please provide your old and new password")
		return
	}

	token, err := ctrl.authService.UpdatePassword(user.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrWrongOldPassword) {
			log.Warn("Password update failed: wrong old password", map[string]interface{}{
				"user_id": user.ID,
			})
			apperrors.BadRequest(c, apperrors.ValidationWrongOldPassword, "Old password is incorrect")
			return
		}
		log.Error("Failed to update password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update password")
		return
	}

	log.Info("Password updated", map[string]interface{}{
		"user_id": user.ID,
	})

	ctrl.sendToken(c, http.StatusOK, user, token)
}

// ForgotPassword starts the password reset workflow
// POST /api/v1/password/forgot
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid forgot password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please provide a valid email")
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	if err := ctrl.passwordResetService.RequestReset(req.Email, scheme, c.Request.Host); err != nil {
		if errors.Is(err, service.ErrEmailNotRegistered) {
			log.Warn("Forgot password: email not registered", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.NotFound(c, apperrors.AuthUserNotFound, "No account found with this email")
			return
		}
		log.Error("Failed to process password reset request", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "Could not send the password reset email")
		return
	}

	log.Info("Password reset email sent", map[string]interface{}{
		"email": req.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset email sent to " + req.Email,
	})
}

// ResetPassword completes the password reset workflow and logs the user in
// PUT /api/v1/password/reset/:token
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reset password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please provide a new password and confirmation")
		return
	}

	user, token, err := ctrl.passwordResetService.ResetPassword(c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			log.Warn("Password reset failed: invalid or expired token", nil)
			apperrors.BadRequest(c, apperrors.AuthResetTokenInvalid, "Password reset token is invalid or has expired")
			return
		}
		if errors.Is(err, service.ErrPasswordMismatch) {
			apperrors.BadRequest(c, apperrors.ValidationPasswordMismatch, "Password does not match the confirmation")
			return
		}
		log.Error("Failed to reset password", err, nil)
		apperrors.InternalError(c, "Could not reset the password")
		return
	}

	log.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
	})

	ctrl.sendToken(c, http.StatusOK, user, token)
}

// ListUsers returns all users
// GET /api/v1/admin/users
func (ctrl *AuthController) ListUsers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	users, err := ctrl.authService.ListUsers()
	if err != nil {
		log.Error("Failed to list users", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(users),
		"users":   users,
	})
}

// GetUser returns a single user by ID
// GET /api/v1/admin/users/:id
func (ctrl *AuthController) GetUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetUserByID(id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to get user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userPayload(user),
	})
}

// UpdateUser updates a user's profile and role
// PUT /api/v1/admin/users/:id
func (ctrl *AuthController) UpdateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid admin user update request", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid user data")
		return
	}

	user, err := ctrl.authService.UpdateUser(id, req.Name, req.Email, model.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "An account with this email already exists")
			return
		}
		log.Error("Failed to update user", err, map[string]interface{}{
			"user_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update user")
		return
	}

	log.Info("User updated by admin", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userPayload(user),
	})
}
