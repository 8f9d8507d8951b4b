package models

import (
	"time"

	"gorm.io/datatypes"
)

// ComparisonResult is the structured outcome of comparing a CV with a job offer.
// All five fields are always populated.
type ComparisonResult struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendation  string   `json:"recommendation"`
	MatchPercentage int      `json:"matchPercentage"`
	FourWeekPlan    string   `json:"fourWeekPlan"`
}

// ComparisonCache holds at most one cached comparison per session.
type ComparisonCache struct {
	SessionID                    string                               `gorm:"type:text;primaryKey" json:"session_id"`
	CVTextHash                   string                               `gorm:"type:text;not null" json:"cv_text_hash"`
	JobOfferTextHash             string                               `gorm:"type:text;not null" json:"job_offer_text_hash"`
	AdditionalConsiderationsHash string                               `gorm:"type:text" json:"additional_considerations_hash"`
	ComparisonResults            datatypes.JSONType[ComparisonResult] `gorm:"type:jsonb;not null" json:"comparison_results"`
	CVAnalysis                   string                               `gorm:"type:text" json:"cv_analysis"`
	JobOfferAnalysis             string                               `gorm:"type:text" json:"job_offer_analysis"`
	CreatedAt                    time.Time                            `json:"created_at"`
	UpdatedAt                    time.Time                            `gorm:"index" json:"updated_at"`
}

func (ComparisonCache) TableName() string {
	return "comparison_cache"
}

// Result returns the cached comparison.
func (c *ComparisonCache) Result() ComparisonResult {
	return c.ComparisonResults.Data()
}

// HasAnalyses reports whether both intermediate analyses were retained.
func (c *ComparisonCache) HasAnalyses() bool {
	return c.CVAnalysis != "" && c.JobOfferAnalysis != ""
}
