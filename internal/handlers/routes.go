package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under router. guards run before the process endpoint only.
func RegisterRoutes(router fiber.Router, process *ProcessHandler, status *StatusHandler, health *HealthHandler, guards ...fiber.Handler) {
	router.Get("/health", health.HandleHealth)

	processChain := append(append([]fiber.Handler{}, guards...), process.HandleProcess)
	router.Post("/process", processChain...)

	router.Get("/status/:process_id", status.HandleStatus)
	router.Get("/download/:process_id", status.HandleDownload)
}
