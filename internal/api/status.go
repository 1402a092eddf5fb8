package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"thriftit/backend/internal/models"
	"thriftit/backend/pkg/logger"
)

// StatusHandler reports row counts and feature flags for quick diagnostics
type StatusHandler struct {
	db       *gorm.DB
	presence bool
	logger   *logger.Logger
}

func NewStatusHandler(db *gorm.DB, presenceEnabled bool, logger *logger.Logger) *StatusHandler {
	return &StatusHandler{db: db, presence: presenceEnabled, logger: logger}
}

// Status returns table counts and which optional features are enabled
func (h *StatusHandler) Status(c *gin.Context) {
	counts := gin.H{}
	for name, model := range map[string]interface{}{
		"users":    &models.User{},
		"products": &models.Product{},
		"messages": &models.Message{},
		"wishlist": &models.Wishlist{},
	} {
		var count int64
		if err := h.db.Model(model).Count(&count).Error; err != nil {
			h.logger.Error("Error counting rows", "table", name, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read status"})
			return
		}
		counts[name] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"counts": counts,
		"features": gin.H{
			"presence": h.presence,
		},
	})
}
