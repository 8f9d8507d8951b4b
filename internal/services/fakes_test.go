package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/career-assistant/internal/models"
	"alfredoptarigan/career-assistant/internal/repositories"
)

var errStoreDown = errors.New("connection refused")

const comparisonJSON = `{"strengths":["Go"],"weaknesses":["Kubernetes"],"recommendation":"Apply.","matchPercentage":80,"fourWeekPlan":"Week 1: k8s"}`

// stubModel answers by stage, recognised from the prompt text.
type stubModel struct {
	mu         sync.Mutex
	cvCalls    int
	offerCalls int
	cmpCalls   int
	prompts    []string
	comparison string
	err        error
}

func (m *stubModel) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}

	switch {
	case strings.Contains(prompt, "Analyse the following CV"):
		m.cvCalls++
		return "CV analysis", nil
	case strings.Contains(prompt, "Analyse the following job offer"):
		m.offerCalls++
		return "Offer analysis", nil
	default:
		m.cmpCalls++
		if m.comparison != "" {
			return m.comparison, nil
		}
		return comparisonJSON, nil
	}
}

func (m *stubModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cvCalls + m.offerCalls + m.cmpCalls
}

type fakeCacheRepo struct {
	mu        sync.Mutex
	entries   map[string]models.ComparisonCache
	findErr   error
	upsertErr error
	upserts   int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string]models.ComparisonCache{}}
}

func (r *fakeCacheRepo) FindBySessionID(_ context.Context, sessionID string) (*models.ComparisonCache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	entry, ok := r.entries[sessionID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &entry, nil
}

func (r *fakeCacheRepo) Upsert(_ context.Context, entry *models.ComparisonCache) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.upserts++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.entries[entry.SessionID] = *entry
	return nil
}

func (r *fakeCacheRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return 0, r.findErr
	}
	var deleted int64
	for id, entry := range r.entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(r.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeRequestRepo struct {
	mu        sync.Mutex
	requests  []models.UserRequest
	countErr  error
	createErr error
}

func (r *fakeRequestRepo) Create(_ context.Context, req *models.UserRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.requests = append(r.requests, *req)
	return nil
}

func (r *fakeRequestRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	return r.count(since, func(models.UserRequest) bool { return true })
}

func (r *fakeRequestRepo) CountByIPSince(_ context.Context, ip string, since time.Time) (int64, error) {
	return r.count(since, func(req models.UserRequest) bool { return req.IPAddress == ip })
}

func (r *fakeRequestRepo) count(since time.Time, match func(models.UserRequest) bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, req := range r.requests {
		if !req.CreatedAt.Before(since) && match(req) {
			n++
		}
	}
	return n, nil
}

func (r *fakeRequestRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

type fakeReportRepo struct {
	mu        sync.Mutex
	reports   map[uuid.UUID]models.Report
	createErr error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[uuid.UUID]models.Report{}}
}

func (r *fakeReportRepo) Create(_ context.Context, report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.reports[report.ID] = *report
	return nil
}

func (r *fakeReportRepo) FindLatestByProcessID(_ context.Context, processID string) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *models.Report
	for _, report := range r.reports {
		if report.ProcessID != processID {
			continue
		}
		if latest == nil || report.CreatedAt.After(latest.CreatedAt) {
			rep := report
			latest = &rep
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

func (r *fakeReportRepo) FindOlderThan(_ context.Context, cutoff time.Time, limit int) ([]models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var old []models.Report
	for _, report := range r.reports {
		if report.CreatedAt.Before(cutoff) {
			old = append(old, report)
		}
	}
	sort.Slice(old, func(i, j int) bool { return old[i].CreatedAt.Before(old[j].CreatedAt) })
	if len(old) > limit {
		old = old[:limit]
	}
	return old, nil
}

func (r *fakeReportRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.reports, id)
	return nil
}

func (r *fakeReportRepo) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// cacheEntry builds a stored entry matching the given texts.
func cacheEntry(sessionID, cv, offer, considerations string, result models.ComparisonResult, withAnalyses bool) models.ComparisonCache {
	entry := models.ComparisonCache{
		SessionID:                    sessionID,
		CVTextHash:                   Fingerprint(cv),
		JobOfferTextHash:             Fingerprint(offer),
		AdditionalConsiderationsHash: optionalFingerprint(considerations),
		UpdatedAt:                    time.Now(),
	}
	entry.ComparisonResults = datatypes.NewJSONType(result)
	if withAnalyses {
		entry.CVAnalysis = "stored CV analysis"
		entry.JobOfferAnalysis = "stored offer analysis"
	}
	return entry
}
