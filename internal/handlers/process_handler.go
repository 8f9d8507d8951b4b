package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-assistant/internal/apperror"
	"alfredoptarigan/career-assistant/internal/services"
)

const defaultUserID = "demo"

type ProcessHandler struct {
	app         services.ApplicationService
	maxFileSize int64
}

func NewProcessHandler(app services.ApplicationService, maxFileSize int64) *ProcessHandler {
	return &ProcessHandler{
		app:         app,
		maxFileSize: maxFileSize,
	}
}

// HandleProcess handles POST /api/process
func (h *ProcessHandler) HandleProcess(c *fiber.Ctx) error {
	cvUpload, err := h.formUpload(c, "cv_file", "CV")
	if err != nil {
		return writeError(c, err)
	}

	offerUpload, err := h.formUpload(c, "job_offer_file", "job offer")
	if err != nil {
		return writeError(c, err)
	}

	userID := strings.TrimSpace(c.FormValue("user_id"))
	if userID == "" {
		userID = defaultUserID
	}

	req := services.ApplicationRequest{
		CV: services.DocumentInput{
			Upload: cvUpload,
			Link:   strings.TrimSpace(c.FormValue("cv_link")),
		},
		JobOffer: services.DocumentInput{
			Upload: offerUpload,
			Link:   strings.TrimSpace(c.FormValue("job_offer_link")),
		},
		JobOfferText:             c.FormValue("job_offer_text"),
		AdditionalConsiderations: c.FormValue("additional_considerations"),
		UserID:                   userID,
		SessionID:                strings.TrimSpace(c.FormValue("session_id")),
		UserIP:                   strings.TrimSpace(c.FormValue("user_ip")),
	}

	resp, err := h.app.ProcessApplication(c.UserContext(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(resp)
}

// formUpload reads an optional multipart file field. A missing field yields nil.
func (h *ProcessHandler) formUpload(c *fiber.Ctx, field, label string) (*services.Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil || fileHeader == nil {
		return nil, nil
	}

	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return nil, apperror.UnsupportedFormat(
			fmt.Sprintf("The %s file is too large. Max size: %d bytes.", label, h.maxFileSize), nil)
	}

	content, err := readFileHeader(fileHeader)
	if err != nil {
		return nil, apperror.UnsupportedFormat(fmt.Sprintf("Could not read the uploaded %s file.", label), err)
	}

	return &services.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func readFileHeader(fileHeader *multipart.FileHeader) ([]byte, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return io.ReadAll(src)
}
