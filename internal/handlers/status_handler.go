package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-assistant/internal/apperror"
	"alfredoptarigan/career-assistant/internal/models"
	"alfredoptarigan/career-assistant/internal/services"
)

type StatusHandler struct {
	app services.ApplicationService
}

func NewStatusHandler(app services.ApplicationService) *StatusHandler {
	return &StatusHandler{
		app: app,
	}
}

// HandleStatus handles GET /api/status/:process_id
func (h *StatusHandler) HandleStatus(c *fiber.Ctx) error {
	processID := c.Params("process_id")

	record, ok := h.app.GetStatus(processID)
	if !ok {
		return notFound(c, "Process not found", "Check the process_id returned by /api/process.")
	}

	return c.JSON(models.NewStatusResponse(record))
}

// HandleDownload handles GET /api/download/:process_id
func (h *StatusHandler) HandleDownload(c *fiber.Ctx) error {
	processID := c.Params("process_id")

	format := models.ReportFormat(strings.ToLower(c.Query("format", string(models.ReportFormatPDF))))
	if format != models.ReportFormatPDF && format != models.ReportFormatXLSX {
		return writeError(c, apperror.UnsupportedFormat(
			fmt.Sprintf("Unknown report format %q.", format), nil))
	}

	data, err := h.app.GetReport(c.UserContext(), processID, format)
	if err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			return notFound(c, "Report not found", "The process is unknown or finished without a report.")
		}
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+format.FileName(processID))
	return c.Send(data)
}
