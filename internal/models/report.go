package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is an archived rendered report kept on disk for later download.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProcessID string    `gorm:"type:text;not null;index" json:"process_id"`
	SessionID string    `gorm:"type:text;index" json:"session_id,omitempty"`
	FileName  string    `gorm:"type:text" json:"file_name"`
	FilePath  string    `gorm:"type:text" json:"file_path"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

// ReportContent is everything a renderer needs to lay out a report.
type ReportContent struct {
	ProcessID                string
	Result                   ComparisonResult
	CVAnalysis               string
	JobOfferAnalysis         string
	AdditionalConsiderations string
}

// ReportFormat selects the rendered document type.
type ReportFormat string

const (
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatXLSX ReportFormat = "xlsx"
)

func (f ReportFormat) ContentType() string {
	if f == ReportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

func (f ReportFormat) FileName(processID string) string {
	return "career_analysis_" + processID + "." + string(f)
}
