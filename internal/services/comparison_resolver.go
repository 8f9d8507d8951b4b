package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/career-assistant/internal/apperror"
	"alfredoptarigan/career-assistant/internal/models"
	"alfredoptarigan/career-assistant/internal/repositories"
)

type ResolveInput struct {
	CVText                   string
	JobOfferText             string
	AdditionalConsiderations string
	SessionID                string
}

func (in ResolveInput) hasCV() bool    { return strings.TrimSpace(in.CVText) != "" }
func (in ResolveInput) hasOffer() bool { return strings.TrimSpace(in.JobOfferText) != "" }

// IsResume reports whether the input asks to reuse a session without new documents.
func (in ResolveInput) IsResume() bool {
	return in.SessionID != "" && !in.hasCV() && !in.hasOffer()
}

// HasDocuments reports whether any new document text was supplied.
func (in ResolveInput) HasDocuments() bool {
	return in.hasCV() || in.hasOffer()
}

type Resolution struct {
	Result           models.ComparisonResult
	FromCache        bool
	CVAnalysis       string
	JobOfferAnalysis string
}

func (r *Resolution) HasAnalyses() bool {
	return r.CVAnalysis != "" && r.JobOfferAnalysis != ""
}

// ProgressFunc is told about every stage as it completes.
type ProgressFunc func(task models.ProcessTask)

type ComparisonResolver interface {
	Resolve(ctx context.Context, in ResolveInput, progress ProgressFunc) (*Resolution, error)
	CompleteAnalyses(ctx context.Context, in ResolveInput, res *Resolution, progress ProgressFunc) error
}

// CacheLookupOutcome tags a cache read.
type CacheLookupOutcome int

const (
	CacheHit CacheLookupOutcome = iota
	CacheMiss
	CacheStoreUnavailable
)

type comparisonResolver struct {
	cache    repositories.ComparisonCacheRepository
	analyzer CandidacyAnalyzer
	now      func() time.Time
	log      *zap.Logger
}

func NewComparisonResolver(cache repositories.ComparisonCacheRepository, analyzer CandidacyAnalyzer, log *zap.Logger) ComparisonResolver {
	return &comparisonResolver{
		cache:    cache,
		analyzer: analyzer,
		now:      time.Now,
		log:      log.Named("resolver"),
	}
}

// Resolve implements ComparisonResolver.
func (r *comparisonResolver) Resolve(ctx context.Context, in ResolveInput, progress ProgressFunc) (*Resolution, error) {
	if progress == nil {
		progress = func(models.ProcessTask) {}
	}

	if in.IsResume() {
		return r.resume(ctx, in.SessionID, progress)
	}

	if !in.hasCV() || !in.hasOffer() {
		return nil, missingDocumentsError(in)
	}

	cvHash := Fingerprint(in.CVText)
	offerHash := Fingerprint(in.JobOfferText)
	considerationsHash := optionalFingerprint(in.AdditionalConsiderations)

	if in.SessionID != "" {
		entry, outcome := r.lookup(ctx, in.SessionID)
		switch {
		case outcome == CacheHit &&
			entry.CVTextHash == cvHash &&
			entry.JobOfferTextHash == offerHash &&
			entry.AdditionalConsiderationsHash == considerationsHash:
			r.log.Info("cache hit", zap.String("session_id", in.SessionID), zap.Bool("with_analyses", entry.HasAnalyses()))
			res := &Resolution{
				Result:           entry.Result(),
				FromCache:        true,
				CVAnalysis:       entry.CVAnalysis,
				JobOfferAnalysis: entry.JobOfferAnalysis,
			}
			markResolved(res, progress)
			return res, nil
		case outcome == CacheHit:
			r.log.Info("cache entry does not match inputs, recomputing", zap.String("session_id", in.SessionID))
		}
	}

	cvAnalysis, err := r.analyzer.AnalyzeCV(ctx, in.CVText)
	if err != nil {
		return nil, err
	}
	progress(models.TaskUnderstandCV)

	offerAnalysis, err := r.analyzer.AnalyzeJobOffer(ctx, in.JobOfferText)
	if err != nil {
		return nil, err
	}
	progress(models.TaskUnderstandOffer)

	result, err := r.analyzer.Compare(ctx, cvAnalysis, offerAnalysis, in.AdditionalConsiderations)
	if err != nil {
		return nil, err
	}
	progress(models.TaskCompare)

	if in.SessionID != "" {
		r.store(ctx, &models.ComparisonCache{
			SessionID:                    in.SessionID,
			CVTextHash:                   cvHash,
			JobOfferTextHash:             offerHash,
			AdditionalConsiderationsHash: considerationsHash,
			ComparisonResults:            datatypes.NewJSONType(result),
			CVAnalysis:                   cvAnalysis,
			JobOfferAnalysis:             offerAnalysis,
		})
	}

	return &Resolution{
		Result:           result,
		CVAnalysis:       cvAnalysis,
		JobOfferAnalysis: offerAnalysis,
	}, nil
}

// CompleteAnalyses implements ComparisonResolver. It recomputes only the
// analyses a resolution is missing and never the comparison itself. The
// recomputed analyses are written back to the session's cache entry.
func (r *comparisonResolver) CompleteAnalyses(ctx context.Context, in ResolveInput, res *Resolution, progress ProgressFunc) error {
	if res.HasAnalyses() || !in.hasCV() || !in.hasOffer() {
		return nil
	}
	if progress == nil {
		progress = func(models.ProcessTask) {}
	}

	if res.CVAnalysis == "" {
		cvAnalysis, err := r.analyzer.AnalyzeCV(ctx, in.CVText)
		if err != nil {
			return err
		}
		res.CVAnalysis = cvAnalysis
	}
	progress(models.TaskUnderstandCV)

	if res.JobOfferAnalysis == "" {
		offerAnalysis, err := r.analyzer.AnalyzeJobOffer(ctx, in.JobOfferText)
		if err != nil {
			return err
		}
		res.JobOfferAnalysis = offerAnalysis
	}
	progress(models.TaskUnderstandOffer)

	if in.SessionID != "" {
		r.store(ctx, &models.ComparisonCache{
			SessionID:                    in.SessionID,
			CVTextHash:                   Fingerprint(in.CVText),
			JobOfferTextHash:             Fingerprint(in.JobOfferText),
			AdditionalConsiderationsHash: optionalFingerprint(in.AdditionalConsiderations),
			ComparisonResults:            datatypes.NewJSONType(res.Result),
			CVAnalysis:                   res.CVAnalysis,
			JobOfferAnalysis:             res.JobOfferAnalysis,
		})
	}

	return nil
}

func (r *comparisonResolver) resume(ctx context.Context, sessionID string, progress ProgressFunc) (*Resolution, error) {
	entry, outcome := r.lookup(ctx, sessionID)
	switch outcome {
	case CacheMiss:
		return nil, apperror.SessionNotFound(sessionID)
	case CacheStoreUnavailable:
		return nil, apperror.StoreUnavailable(nil)
	}

	r.log.Info("session resumed", zap.String("session_id", sessionID), zap.Bool("with_analyses", entry.HasAnalyses()))

	res := &Resolution{
		Result:           entry.Result(),
		FromCache:        true,
		CVAnalysis:       entry.CVAnalysis,
		JobOfferAnalysis: entry.JobOfferAnalysis,
	}
	markResolved(res, progress)
	return res, nil
}

func (r *comparisonResolver) lookup(ctx context.Context, sessionID string) (*models.ComparisonCache, CacheLookupOutcome) {
	entry, err := r.cache.FindBySessionID(ctx, sessionID)
	switch {
	case err == nil:
		return entry, CacheHit
	case errors.Is(err, repositories.ErrNotFound):
		return nil, CacheMiss
	default:
		r.log.Warn("comparison cache unavailable", zap.String("session_id", sessionID), zap.Error(err))
		return nil, CacheStoreUnavailable
	}
}

// store upserts a cache entry. Failures are logged and never reach the caller.
func (r *comparisonResolver) store(ctx context.Context, entry *models.ComparisonCache) StoreOutcome {
	now := r.now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := r.cache.Upsert(ctx, entry); err != nil {
		r.log.Error("failed to cache comparison", zap.String("session_id", entry.SessionID), zap.Error(err))
		return StoreUnavailable
	}

	r.log.Info("comparison cached", zap.String("session_id", entry.SessionID))
	return StoreOK
}

func markResolved(res *Resolution, progress ProgressFunc) {
	if res.CVAnalysis != "" {
		progress(models.TaskUnderstandCV)
	}
	if res.JobOfferAnalysis != "" {
		progress(models.TaskUnderstandOffer)
	}
	progress(models.TaskCompare)
}

func missingDocumentsError(in ResolveInput) error {
	switch {
	case in.hasCV() && !in.hasOffer():
		return apperror.MissingInput("A job offer is required together with the CV.")
	case !in.hasCV() && in.hasOffer():
		return apperror.MissingInput("A CV is required together with the job offer.")
	default:
		return apperror.MissingInput("Either provide CV and job offer files/links, or provide a session_id.")
	}
}
