package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/models"
	"alfredoptarigan/career-assistant/internal/repositories"
)

const purgeBatchSize = 100

// ReportArchive keeps rendered PDF reports beyond the life of the in-memory process table.
type ReportArchive interface {
	Save(ctx context.Context, processID, sessionID string, data []byte) error
	Load(ctx context.Context, processID string) ([]byte, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type reportArchive struct {
	storage StorageService
	repo    repositories.ReportRepository
	log     *zap.Logger
}

func NewReportArchive(storage StorageService, repo repositories.ReportRepository, log *zap.Logger) ReportArchive {
	return &reportArchive{
		storage: storage,
		repo:    repo,
		log:     log.Named("archive"),
	}
}

// Save implements ReportArchive.
func (a *reportArchive) Save(ctx context.Context, processID, sessionID string, data []byte) error {
	filename, filePath, err := a.storage.SaveBytes("report_"+processID, ".pdf", data)
	if err != nil {
		return err
	}

	report := &models.Report{
		ID:        uuid.New(),
		ProcessID: processID,
		SessionID: sessionID,
		FileName:  filename,
		FilePath:  filePath,
		CreatedAt: time.Now(),
	}

	if err := a.repo.Create(ctx, report); err != nil {
		// Cleanup stored file if database insert fails
		_ = a.storage.DeleteFile(filename)
		return err
	}

	a.log.Info("report archived", zap.String("process_id", processID), zap.String("file", filename))
	return nil
}

// Load implements ReportArchive. It returns repositories.ErrNotFound when no report was archived.
func (a *reportArchive) Load(ctx context.Context, processID string) ([]byte, error) {
	report, err := a.repo.FindLatestByProcessID(ctx, processID)
	if err != nil {
		return nil, err
	}

	return a.storage.ReadFile(report.FileName)
}

// PurgeOlderThan implements ReportArchive.
func (a *reportArchive) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	deleted := 0

	for {
		reports, err := a.repo.FindOlderThan(ctx, cutoff, purgeBatchSize)
		if err != nil {
			return deleted, fmt.Errorf("failed to list old reports: %w", err)
		}

		batchDeleted := 0
		for _, report := range reports {
			if err := a.storage.DeleteFile(report.FileName); err != nil {
				a.log.Warn("failed to delete report file", zap.String("file", report.FileName), zap.Error(err))
				continue
			}
			if err := a.repo.Delete(ctx, report.ID); err != nil {
				a.log.Warn("failed to delete report row", zap.String("id", report.ID.String()), zap.Error(err))
				continue
			}
			batchDeleted++
		}

		deleted += batchDeleted
		if len(reports) < purgeBatchSize || batchDeleted == 0 {
			return deleted, nil
		}
	}
}
