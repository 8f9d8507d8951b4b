package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/career-assistant/internal/logger"
)

// LanguageModel turns a prompt into a text completion.
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrModelNotConfigured is returned by the placeholder model used when no API key is set.
var ErrModelNotConfigured = errors.New("language model is not configured")

type unconfiguredModel struct{}

// NewUnconfiguredModel returns a LanguageModel that fails every call. It keeps
// session resumes and health checks working without an API key.
func NewUnconfiguredModel() LanguageModel {
	return unconfiguredModel{}
}

func (unconfiguredModel) Complete(context.Context, string) (string, error) {
	return "", ErrModelNotConfigured
}

type GeminiService interface {
	LanguageModel
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
	ModelName() string
}

// ModelInfo describes a model that can serve generateContent.
type ModelInfo struct {
	Name      string
	ShortName string
	Actions   []string
}

type GeminiOptions struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxRetries  int
	RetryDelay  time.Duration
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
	maxRetries  int
	baseDelay   time.Duration
	maxDelay    time.Duration
	log         *zap.Logger
}

func NewGeminiService(ctx context.Context, opts GeminiOptions, log *zap.Logger) (GeminiService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	return &geminiService{
		client:      client,
		modelName:   opts.Model,
		temperature: opts.Temperature,
		maxRetries:  opts.MaxRetries,
		baseDelay:   opts.RetryDelay,
		maxDelay:    30 * time.Second,
		log:         log.Named("gemini"),
	}, nil
}

// ModelName implements GeminiService.
func (g *geminiService) ModelName() string {
	return g.modelName
}

// Complete implements LanguageModel.
func (g *geminiService) Complete(ctx context.Context, prompt string) (string, error) {
	return g.GenerateTextWithRetry(ctx, prompt, g.temperature, g.maxRetries)
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content in response")
	}

	g.log.Debug("completion received",
		zap.Int("chars", len(text)),
		zap.String("preview", logger.Truncate(text, 120)),
	)

	return text, nil
}

// GenerateTextWithRetry implements GeminiService.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			delay := backoffDelay(g.baseDelay, g.maxDelay, attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			}
		}

		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return "", err
		}

		if attempt < maxRetries {
			g.log.Warn("generation attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxRetries),
				zap.Error(err),
			)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

// ListModels implements GeminiService.
func (g *geminiService) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo

	for model, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		if !supportsGenerateContent(model.SupportedActions) {
			continue
		}

		short := model.Name
		if idx := strings.LastIndex(short, "/"); idx >= 0 {
			short = short[idx+1:]
		}

		models = append(models, ModelInfo{
			Name:      model.Name,
			ShortName: short,
			Actions:   model.SupportedActions,
		})
	}

	return models, nil
}

func supportsGenerateContent(actions []string) bool {
	for _, action := range actions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}

func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	delay := base * time.Duration(math.Pow(2, float64(attempt-2)))
	if delay > max {
		delay = max
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return retryableStatus(apiErrPtr.Code)
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF") ||
		strings.Contains(errMsg, "no text content")
}

func retryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
