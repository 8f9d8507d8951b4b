package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/repositories"
)

func newTestArchive(t *testing.T) (ReportArchive, *fakeReportRepo, StorageService) {
	t.Helper()
	storage := NewStorageService(t.TempDir())
	if err := storage.EnsureDir(); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	repo := newFakeReportRepo()
	return NewReportArchive(storage, repo, zap.NewNop()), repo, storage
}

func TestReportArchiveSaveAndLoad(t *testing.T) {
	archive, repo, _ := newTestArchive(t)
	ctx := context.Background()

	if err := archive.Save(ctx, "p1", "s1", []byte("%PDF-1.4 report")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if repo.len() != 1 {
		t.Fatalf("expected one report row, got %d", repo.len())
	}

	data, err := archive.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != "%PDF-1.4 report" {
		t.Fatalf("unexpected report bytes %q", data)
	}

	if _, err := archive.Load(ctx, "unknown"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportArchiveRemovesFileWhenRowFails(t *testing.T) {
	archive, repo, storage := newTestArchive(t)
	repo.createErr = errStoreDown

	if err := archive.Save(context.Background(), "p1", "", []byte("%PDF")); err == nil {
		t.Fatalf("expected save to fail")
	}

	entries, err := os.ReadDir(storage.GetFilePath("."))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected orphan file to be removed, found %d files", len(entries))
	}
}

func TestReportArchivePurgeOlderThan(t *testing.T) {
	archive, repo, storage := newTestArchive(t)
	ctx := context.Background()

	for _, id := range []string{"old1", "old2", "fresh"} {
		if err := archive.Save(ctx, id, "", []byte("%PDF "+id)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	repo.mu.Lock()
	for id, report := range repo.reports {
		if report.ProcessID != "fresh" {
			report.CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
			repo.reports[id] = report
		}
	}
	repo.mu.Unlock()

	deleted, err := archive.PurgeOlderThan(ctx, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 2 || repo.len() != 1 {
		t.Fatalf("expected 2 purged and 1 kept, got %d purged and %d kept", deleted, repo.len())
	}

	if _, err := archive.Load(ctx, "fresh"); err != nil {
		t.Fatalf("expected fresh report to survive: %v", err)
	}
	entries, _ := os.ReadDir(storage.GetFilePath("."))
	if len(entries) != 1 {
		t.Fatalf("expected one file left, got %d", len(entries))
	}
}
