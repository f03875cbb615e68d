package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/internal/app/service"
	apperrors "github.com/shopit-dev/shopit-backend/internal/errors"
	"github.com/shopit-dev/shopit-backend/internal/middleware"
	"github.com/shopit-dev/shopit-backend/internal/storage"
)

type UploadController struct {
	storage     *storage.AvatarStorage
	authService service.AuthService
}

func NewUploadController(storage *storage.AvatarStorage, authService service.AuthService) *UploadController {
	return &UploadController{
		storage:     storage,
		authService: authService,
	}
}

type AvatarUploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

type ConfirmAvatarRequest struct {
	FileURL string `json:"file_url" binding:"required,url"`
}

var allowedAvatarTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

// GetAvatarUploadURL returns a presigned S3 PUT URL for the caller's avatar
// POST /api/v1/me/avatar/upload-url
func (ctrl *UploadController) GetAvatarUploadURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Login required")
		return
	}

	var req AvatarUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid avatar upload request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please provide a filename and content type")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedAvatarTypes); err != nil {
		log.Warn("Rejected avatar content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	upload, err := ctrl.storage.PresignAvatarUpload(userID, req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"user_id":  userID,
			"filename": req.Filename,
		})
		apperrors.InternalError(c, "Could not prepare the avatar upload")
		return
	}

	log.Info("Avatar upload URL generated", map[string]interface{}{
		"user_id": userID,
		"key":     upload.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"upload":  upload,
	})
}

// ConfirmAvatar records the uploaded avatar URL on the user's profile
// PUT /api/v1/me/avatar
func (ctrl *UploadController) ConfirmAvatar(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Login required")
		return
	}

	var req ConfirmAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid avatar confirmation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Please provide the uploaded file URL")
		return
	}

	user, err := ctrl.authService.UpdateAvatar(userID, req.FileURL)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to update avatar", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update avatar")
		return
	}

	log.Info("Avatar updated", map[string]interface{}{
		"user_id": user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    userPayload(user),
	})
}
