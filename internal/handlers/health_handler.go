package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-assistant/internal/models"
)

type HealthHandler struct {
	databaseConfigured bool
	modelConfigured    bool
	modelName          string
}

func NewHealthHandler(databaseConfigured, modelConfigured bool, modelName string) *HealthHandler {
	return &HealthHandler{
		databaseConfigured: databaseConfigured,
		modelConfigured:    modelConfigured,
		modelName:          modelName,
	}
}

// HandleHealth handles GET /api/health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(models.HealthResponse{
		Status:   "ok",
		Database: models.DatabaseHealth{Configured: h.databaseConfigured},
		Model: models.ModelHealth{
			Configured: h.modelConfigured,
			Name:       h.modelName,
		},
	})
}
