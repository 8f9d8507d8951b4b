package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/apperror"
	"alfredoptarigan/career-assistant/internal/models"
	"alfredoptarigan/career-assistant/internal/repositories"
)

// RateLimiter enforces daily quotas against the request ledger.
type RateLimiter interface {
	Check(ctx context.Context, ip string) error
	Record(ctx context.Context, processID, userID, ip string) StoreOutcome
}

type RateLimitOptions struct {
	GlobalMax int
	PerIPMax  int
	Window    time.Duration
}

type rateLimiter struct {
	repo repositories.UserRequestRepository
	opts RateLimitOptions
	now  func() time.Time
	log  *zap.Logger
}

func NewRateLimiter(repo repositories.UserRequestRepository, opts RateLimitOptions, log *zap.Logger) RateLimiter {
	if opts.Window <= 0 {
		opts.Window = 24 * time.Hour
	}
	return &rateLimiter{
		repo: repo,
		opts: opts,
		now:  time.Now,
		log:  log.Named("ratelimit"),
	}
}

// Check implements RateLimiter. The global quota is checked first; the per-IP
// quota only when an IP is known. An unreachable ledger permits the request.
func (l *rateLimiter) Check(ctx context.Context, ip string) error {
	since := l.now().Add(-l.opts.Window)

	if l.opts.GlobalMax > 0 {
		total, outcome := l.count(ctx, since, "")
		if outcome == StoreOK && total >= int64(l.opts.GlobalMax) {
			l.log.Warn("global quota reached", zap.Int64("requests", total), zap.Int("limit", l.opts.GlobalMax))
			return apperror.GlobalRateLimitExceeded(l.opts.GlobalMax)
		}
	}

	if ip != "" && l.opts.PerIPMax > 0 {
		count, outcome := l.count(ctx, since, ip)
		if outcome == StoreOK && count >= int64(l.opts.PerIPMax) {
			l.log.Warn("per-ip quota reached", zap.String("ip", ip), zap.Int64("requests", count), zap.Int("limit", l.opts.PerIPMax))
			return apperror.RateLimitExceeded(l.opts.PerIPMax)
		}
	}

	return nil
}

// Record implements RateLimiter.
func (l *rateLimiter) Record(ctx context.Context, processID, userID, ip string) StoreOutcome {
	entry := &models.UserRequest{
		ID:        uuid.New(),
		IPAddress: ip,
		ProcessID: processID,
		UserID:    userID,
		CreatedAt: l.now(),
	}

	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Error("failed to record user request", zap.String("process_id", processID), zap.Error(err))
		return StoreUnavailable
	}
	return StoreOK
}

func (l *rateLimiter) count(ctx context.Context, since time.Time, ip string) (int64, StoreOutcome) {
	var (
		n   int64
		err error
	)
	if ip == "" {
		n, err = l.repo.CountSince(ctx, since)
	} else {
		n, err = l.repo.CountByIPSince(ctx, ip, since)
	}
	if err != nil {
		l.log.Warn("request ledger unavailable, allowing request", zap.String("ip", ip), zap.Error(err))
		return 0, StoreUnavailable
	}
	return n, StoreOK
}
