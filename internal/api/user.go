package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thriftit/backend/internal/service"
	"thriftit/backend/pkg/logger"
	"thriftit/backend/pkg/metrics"
	"thriftit/backend/pkg/middleware"
)

// UserHandler handles user directory and profile requests
type UserHandler struct {
	users  *service.UserService
	images *service.ImageService
	logger *logger.Logger
}

func NewUserHandler(users *service.UserService, images *service.ImageService, logger *logger.Logger) *UserHandler {
	return &UserHandler{users: users, images: images, logger: logger}
}

// List returns every user except the caller, for starting conversations
func (h *UserHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	users, err := h.users.ListOthers(userID)
	if err != nil {
		h.logger.Error("Error listing users", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}

	responses := make([]interface{}, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"users": responses})
}

// UpdateProfile updates the caller's full name and optionally their profile
// picture. Accepts multipart form data so the picture can be uploaded in the
// same request.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	fullName := c.PostForm("full_name")

	picture := ""
	if file, err := c.FormFile("profile_picture"); err == nil && file != nil {
		stored, err := h.images.Store(file)
		if err != nil {
			switch err {
			case service.ErrInvalidFileType, service.ErrFileTooLarge, service.ErrUnsafeFilename:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				h.logger.Error("Error storing profile picture", "error", err.Error())
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile picture"})
			}
			return
		}
		metrics.Uploads.Inc()
		picture = "/uploads/" + stored
	}

	user, err := h.users.UpdateProfile(userID, fullName, picture)
	if err != nil {
		switch err {
		case service.ErrUserNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			h.logger.Error("Error updating profile", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}

	c.JSON(http.StatusOK, user.ToResponse())
}
