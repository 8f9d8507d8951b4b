package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/apperror"
	"alfredoptarigan/career-assistant/internal/models"
	"alfredoptarigan/career-assistant/internal/repositories"
)

// ErrReportNotFound is returned when a process has no rendered report.
var ErrReportNotFound = errors.New("report not found")

// DocumentInput is a document given either as an upload or as a link.
type DocumentInput struct {
	Upload *Upload
	Link   string
}

func (d DocumentInput) empty() bool {
	return d.Upload == nil && strings.TrimSpace(d.Link) == ""
}

type ApplicationRequest struct {
	CV                       DocumentInput
	JobOffer                 DocumentInput
	JobOfferText             string
	AdditionalConsiderations string
	UserID                   string
	SessionID                string
	UserIP                   string
}

type ApplicationService interface {
	ProcessApplication(ctx context.Context, req ApplicationRequest) (*models.ProcessResponse, error)
	GetStatus(processID string) (models.ProcessRecord, bool)
	GetReport(ctx context.Context, processID string, format models.ReportFormat) ([]byte, error)
}

type applicationService struct {
	processes ProcessStore
	extractor DocumentExtractor
	limiter   RateLimiter
	resolver  ComparisonResolver
	renderer  ReportRenderer
	archive   ReportArchive
	log       *zap.Logger
}

// NewApplicationService wires the processing flow. archive may be nil.
func NewApplicationService(
	processes ProcessStore,
	extractor DocumentExtractor,
	limiter RateLimiter,
	resolver ComparisonResolver,
	renderer ReportRenderer,
	archive ReportArchive,
	log *zap.Logger,
) ApplicationService {
	return &applicationService{
		processes: processes,
		extractor: extractor,
		limiter:   limiter,
		resolver:  resolver,
		renderer:  renderer,
		archive:   archive,
		log:       log.Named("application"),
	}
}

// ProcessApplication implements ApplicationService. Every failure is recorded
// on the process record before it is returned as an *apperror.Error.
func (s *applicationService) ProcessApplication(ctx context.Context, req ApplicationRequest) (*models.ProcessResponse, error) {
	processID := uuid.New().String()
	s.processes.Create(processID)

	log := s.log.With(zap.String("process_id", processID), zap.String("session_id", req.SessionID))
	log.Info("processing application")

	resp, err := s.run(ctx, processID, req, log)
	if err != nil {
		appErr := apperror.From(err)
		s.processes.Fail(processID, appErr.Message)

		if appErr.Kind == apperror.KindUnexpected {
			log.Error("processing failed", zap.Error(err))
		} else {
			log.Warn("processing rejected", zap.String("error", string(appErr.Kind)), zap.String("message", appErr.Message))
		}
		return nil, appErr
	}

	log.Info("processing completed",
		zap.Bool("from_cache", resp.Results.FromCache),
		zap.Bool("pdf_available", resp.Results.PDFAvailable),
	)
	return resp, nil
}

func (s *applicationService) run(ctx context.Context, processID string, req ApplicationRequest, log *zap.Logger) (*models.ProcessResponse, error) {
	progress := func(task models.ProcessTask) {
		s.processes.MarkTask(processID, task)
	}

	cvText, err := s.extract(ctx, "CV", req.CV)
	if err != nil {
		return nil, err
	}

	offerText := strings.TrimSpace(req.JobOfferText)
	if offerText == "" {
		if offerText, err = s.extract(ctx, "job offer", req.JobOffer); err != nil {
			return nil, err
		}
	}

	in := ResolveInput{
		CVText:                   cvText,
		JobOfferText:             offerText,
		AdditionalConsiderations: strings.TrimSpace(req.AdditionalConsiderations),
		SessionID:                strings.TrimSpace(req.SessionID),
	}

	quotaConsuming := in.HasDocuments()
	if quotaConsuming {
		if err := s.limiter.Check(ctx, req.UserIP); err != nil {
			return nil, err
		}
	}

	res, err := s.resolver.Resolve(ctx, in, progress)
	if err != nil {
		return nil, err
	}

	if !res.HasAnalyses() {
		// The comparison is already known; without analyses only the report is lost.
		if err := s.resolver.CompleteAnalyses(ctx, in, res, progress); err != nil {
			log.Warn("failed to rebuild analyses, report will be skipped", zap.Error(err))
			res.CVAnalysis, res.JobOfferAnalysis = "", ""
		}
	}

	var (
		report  []byte
		content *models.ReportContent
	)
	if res.HasAnalyses() {
		content = &models.ReportContent{
			ProcessID:                processID,
			Result:                   res.Result,
			CVAnalysis:               res.CVAnalysis,
			JobOfferAnalysis:         res.JobOfferAnalysis,
			AdditionalConsiderations: in.AdditionalConsiderations,
		}
		if report, err = s.renderer.Render(*content, models.ReportFormatPDF); err != nil {
			return nil, err
		}
	} else {
		log.Info("skipping report generation, no analyses available")
	}
	progress(models.TaskGeneratePDF)

	results := &models.ProcessResults{
		ComparisonResult: res.Result,
		ProcessID:        processID,
		PDFAvailable:     len(report) > 0,
		FromCache:        res.FromCache,
	}
	s.processes.Complete(processID, results, report, content)

	if quotaConsuming {
		s.limiter.Record(ctx, processID, req.UserID, req.UserIP)
	}

	if len(report) > 0 && s.archive != nil {
		if err := s.archive.Save(ctx, processID, in.SessionID, report); err != nil {
			log.Warn("failed to archive report", zap.Error(err))
		}
	}

	return &models.ProcessResponse{
		ProcessID: processID,
		Status:    string(models.StatusCompleted),
		Results:   results,
	}, nil
}

func (s *applicationService) extract(ctx context.Context, label string, doc DocumentInput) (string, error) {
	switch {
	case doc.empty():
		return "", nil
	case doc.Upload != nil:
		return s.extractor.ExtractUpload(ctx, label, *doc.Upload)
	default:
		return s.extractor.ExtractLink(ctx, label, doc.Link)
	}
}

// GetStatus implements ApplicationService.
func (s *applicationService) GetStatus(processID string) (models.ProcessRecord, bool) {
	return s.processes.Get(processID)
}

// GetReport implements ApplicationService. PDF reports fall back to the archive
// once the process record is gone.
func (s *applicationService) GetReport(ctx context.Context, processID string, format models.ReportFormat) ([]byte, error) {
	if record, ok := s.processes.Get(processID); ok {
		switch {
		case format == models.ReportFormatPDF && record.PDFAvailable():
			return record.Report, nil
		case format == models.ReportFormatXLSX && record.ReportContent != nil:
			return s.renderer.Render(*record.ReportContent, models.ReportFormatXLSX)
		}
	}

	if format != models.ReportFormatPDF || s.archive == nil {
		return nil, ErrReportNotFound
	}

	data, err := s.archive.Load(ctx, processID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	return data, err
}
