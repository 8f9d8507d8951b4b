package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-assistant/internal/apperror"
	"alfredoptarigan/career-assistant/internal/models"
	"alfredoptarigan/career-assistant/internal/services"
)

type fakeApp struct {
	lastReq  services.ApplicationRequest
	resp     *models.ProcessResponse
	err      error
	records  map[string]models.ProcessRecord
	reports  map[string][]byte
	formatOK models.ReportFormat
}

func (f *fakeApp) ProcessApplication(_ context.Context, req services.ApplicationRequest) (*models.ProcessResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func (f *fakeApp) GetStatus(processID string) (models.ProcessRecord, bool) {
	record, ok := f.records[processID]
	return record, ok
}

func (f *fakeApp) GetReport(_ context.Context, processID string, format models.ReportFormat) ([]byte, error) {
	data, ok := f.reports[processID]
	if !ok || format != f.formatOK {
		return nil, services.ErrReportNotFound
	}
	return data, nil
}

func newTestApp(app services.ApplicationService, guards ...fiber.Handler) *fiber.App {
	server := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(
		server.Group("/api"),
		NewProcessHandler(app, 1<<20),
		NewStatusHandler(app),
		NewHealthHandler(true, false, "gemini-2.5-flash"),
		guards...,
	)
	return server
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, content := range files {
		part, err := w.CreateFormFile(name, name+".txt")
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		part.Write([]byte(content))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/process", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestHandleProcessSuccess(t *testing.T) {
	app := &fakeApp{resp: &models.ProcessResponse{
		ProcessID: "p1",
		Status:    "completed",
		Results:   &models.ProcessResults{ProcessID: "p1", PDFAvailable: true},
	}}
	server := newTestApp(app)

	req := multipartRequest(t,
		map[string]string{"job_offer_link": " https://jobs.example.com/42 ", "session_id": "s1", "user_ip": "1.1.1.1"},
		map[string]string{"cv_file": "Jane Doe"},
	)
	resp, err := server.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	decode(t, resp, &body)
	if body["process_id"] != "p1" || body["status"] != "completed" {
		t.Fatalf("unexpected body: %v", body)
	}

	got := app.lastReq
	if got.CV.Upload == nil || string(got.CV.Upload.Content) != "Jane Doe" || got.CV.Upload.Filename != "cv_file.txt" {
		t.Fatalf("expected cv upload, got %+v", got.CV)
	}
	if got.JobOffer.Upload != nil || got.JobOffer.Link != "https://jobs.example.com/42" {
		t.Fatalf("expected trimmed offer link, got %+v", got.JobOffer)
	}
	if got.UserID != "demo" || got.SessionID != "s1" || got.UserIP != "1.1.1.1" {
		t.Fatalf("unexpected request fields: %+v", got)
	}
}

func TestHandleProcessErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		tag    string
	}{
		{name: "session not found", err: apperror.SessionNotFound("nope"), status: 404, tag: "session_not_found"},
		{name: "rate limited", err: apperror.RateLimitExceeded(2), status: 429, tag: "rate_limit_exceeded"},
		{name: "store unavailable", err: apperror.StoreUnavailable(nil), status: 503, tag: "store_unavailable"},
		{name: "missing input", err: apperror.MissingInput("x"), status: 400, tag: "missing_input"},
		{name: "unexpected", err: apperror.Unexpected(context.DeadlineExceeded), status: 500, tag: "unexpected_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestApp(&fakeApp{err: tt.err})

			resp, err := server.Test(multipartRequest(t, map[string]string{"session_id": "nope"}, nil), -1)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}

			var body models.ErrorResponse
			decode(t, resp, &body)
			if body.Error != tt.tag || body.Message == "" || body.Suggestion == "" {
				t.Fatalf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestHandleProcessRejectsLargeUpload(t *testing.T) {
	app := &fakeApp{}
	server := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(server.Group("/api"), NewProcessHandler(app, 4), NewStatusHandler(app), NewHealthHandler(false, false, ""))

	resp, err := server.Test(multipartRequest(t, nil, map[string]string{"cv_file": "far too large"}), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body models.ErrorResponse
	decode(t, resp, &body)
	if body.Error != "unsupported_format" {
		t.Fatalf("unexpected error tag %q", body.Error)
	}
}

func TestHandleStatus(t *testing.T) {
	record := models.NewProcessRecord("p1", time.Now())
	record.Tasks.Mark(models.TaskCompare)
	record.Complete(&models.ProcessResults{ProcessID: "p1", PDFAvailable: true}, []byte("%PDF"), nil)

	server := newTestApp(&fakeApp{records: map[string]models.ProcessRecord{"p1": *record}})

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/status/p1", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]interface{}
	decode(t, resp, &body)
	if body["pdf_buffer"] != "available" || body["status"] != "completed" {
		t.Fatalf("unexpected status body: %v", body)
	}
	tasks, _ := body["tasks"].(map[string]interface{})
	if tasks["compare"] != true || tasks["generate_pdf"] != false {
		t.Fatalf("unexpected tasks: %v", tasks)
	}

	resp, _ = server.Test(httptest.NewRequest(http.MethodGet, "/api/status/unknown", nil), -1)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown process, got %d", resp.StatusCode)
	}
}

func TestHandleDownload(t *testing.T) {
	app := &fakeApp{
		reports:  map[string][]byte{"p1": []byte("%PDF-1.4")},
		formatOK: models.ReportFormatPDF,
	}
	server := newTestApp(app)

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/download/p1", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Disposition"); got != "attachment; filename=career_analysis_p1.pdf" {
		t.Fatalf("unexpected Content-Disposition %q", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected Content-Type %q", got)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", data)
	}

	tests := []struct {
		path   string
		status int
	}{
		{path: "/api/download/unknown", status: fiber.StatusNotFound},
		{path: "/api/download/p1?format=xlsx", status: fiber.StatusNotFound},
		{path: "/api/download/p1?format=docx", status: fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, _ := server.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
		if resp.StatusCode != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.path, tt.status, resp.StatusCode)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestApp(&fakeApp{})

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var body models.HealthResponse
	decode(t, resp, &body)
	if body.Status != "ok" || !body.Database.Configured || body.Model.Configured || body.Model.Name != "gemini-2.5-flash" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	server := newTestApp(&fakeApp{})

	resp, err := server.Test(httptest.NewRequest(http.MethodGet, "/api/nothing", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body models.ErrorResponse
	decode(t, resp, &body)
	if body.Error != "not_found" {
		t.Fatalf("unexpected error tag %q", body.Error)
	}
}

func TestProcessGuardsRunFirst(t *testing.T) {
	app := &fakeApp{resp: &models.ProcessResponse{ProcessID: "p1", Status: "completed"}}
	blocked := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{Error: "rate_limit_exceeded"})
	}
	server := newTestApp(app, blocked)

	resp, _ := server.Test(multipartRequest(t, map[string]string{"session_id": "s1"}, nil), -1)
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected guard to reject, got %d", resp.StatusCode)
	}
	if app.lastReq.SessionID != "" {
		t.Fatalf("handler must not run after a guard rejects")
	}

	resp, _ = server.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected guards to leave other routes alone, got %d", resp.StatusCode)
	}
}
