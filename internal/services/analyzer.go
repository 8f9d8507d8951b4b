package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/models"
)

// CandidacyAnalyzer runs the three model stages of an analysis.
type CandidacyAnalyzer interface {
	AnalyzeCV(ctx context.Context, cvText string) (string, error)
	AnalyzeJobOffer(ctx context.Context, jobOfferText string) (string, error)
	Compare(ctx context.Context, cvAnalysis, jobOfferAnalysis, additionalConsiderations string) (models.ComparisonResult, error)
}

type candidacyAnalyzer struct {
	model   LanguageModel
	prompts *PromptBuilder
	parser  *ComparisonParser
	log     *zap.Logger
}

func NewCandidacyAnalyzer(model LanguageModel, log *zap.Logger) CandidacyAnalyzer {
	log = log.Named("analyzer")
	return &candidacyAnalyzer{
		model:   model,
		prompts: NewPromptBuilder(),
		parser:  NewComparisonParser(log),
		log:     log,
	}
}

// AnalyzeCV implements CandidacyAnalyzer.
func (a *candidacyAnalyzer) AnalyzeCV(ctx context.Context, cvText string) (string, error) {
	return a.complete(ctx, "cv_analysis", a.prompts.BuildCVAnalysisPrompt(cvText))
}

// AnalyzeJobOffer implements CandidacyAnalyzer.
func (a *candidacyAnalyzer) AnalyzeJobOffer(ctx context.Context, jobOfferText string) (string, error) {
	return a.complete(ctx, "job_offer_analysis", a.prompts.BuildJobOfferAnalysisPrompt(jobOfferText))
}

// Compare implements CandidacyAnalyzer.
func (a *candidacyAnalyzer) Compare(ctx context.Context, cvAnalysis, jobOfferAnalysis, additionalConsiderations string) (models.ComparisonResult, error) {
	prompt := a.prompts.BuildComparisonPrompt(cvAnalysis, jobOfferAnalysis, additionalConsiderations)

	response, err := a.complete(ctx, "comparison", prompt)
	if err != nil {
		return models.ComparisonResult{}, err
	}

	result, mode := a.parser.Parse(response)
	a.log.Info("comparison parsed",
		zap.String("mode", string(mode)),
		zap.Int("match_percentage", result.MatchPercentage),
		zap.Int("strengths", len(result.Strengths)),
		zap.Int("weaknesses", len(result.Weaknesses)),
	)

	return result, nil
}

func (a *candidacyAnalyzer) complete(ctx context.Context, stage, prompt string) (string, error) {
	start := time.Now()
	a.log.Debug("model call started", zap.String("stage", stage), zap.Int("prompt_chars", len(prompt)))

	response, err := a.model.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", stage, err)
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return "", fmt.Errorf("failed to generate %s: empty response", stage)
	}

	a.log.Info("model call completed",
		zap.String("stage", stage),
		zap.Int("response_chars", len(response)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return response, nil
}
