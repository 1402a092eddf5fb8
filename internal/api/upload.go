package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thriftit/backend/internal/service"
	"thriftit/backend/pkg/logger"
)

// UploadHandler serves stored images
type UploadHandler struct {
	images *service.ImageService
	logger *logger.Logger
}

func NewUploadHandler(images *service.ImageService, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{images: images, logger: logger}
}

// Serve returns a stored upload by filename
func (h *UploadHandler) Serve(c *gin.Context) {
	path, err := h.images.Resolve(c.Param("filename"))
	if err != nil {
		switch err {
		case service.ErrUnsafeFilename:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		}
		return
	}

	c.File(path)
}
