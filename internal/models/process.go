package models

import "time"

type ProcessStatus string

const (
	StatusProcessing ProcessStatus = "processing"
	StatusCompleted  ProcessStatus = "completed"
	StatusError      ProcessStatus = "error"
)

type ProcessTask string

const (
	TaskUnderstandCV    ProcessTask = "understand_cv"
	TaskUnderstandOffer ProcessTask = "understand_offer"
	TaskCompare         ProcessTask = "compare"
	TaskGeneratePDF     ProcessTask = "generate_pdf"
)

// ProcessTasks flags only ever move from false to true.
type ProcessTasks struct {
	UnderstandCV    bool `json:"understand_cv"`
	UnderstandOffer bool `json:"understand_offer"`
	Compare         bool `json:"compare"`
	GeneratePDF     bool `json:"generate_pdf"`
}

func (t *ProcessTasks) Mark(task ProcessTask) {
	switch task {
	case TaskUnderstandCV:
		t.UnderstandCV = true
	case TaskUnderstandOffer:
		t.UnderstandOffer = true
	case TaskCompare:
		t.Compare = true
	case TaskGeneratePDF:
		t.GeneratePDF = true
	}
}

func (t ProcessTasks) Done(task ProcessTask) bool {
	switch task {
	case TaskUnderstandCV:
		return t.UnderstandCV
	case TaskUnderstandOffer:
		return t.UnderstandOffer
	case TaskCompare:
		return t.Compare
	case TaskGeneratePDF:
		return t.GeneratePDF
	}
	return false
}

// ProcessResults is the payload returned to the client once a process completes.
type ProcessResults struct {
	ComparisonResult
	ProcessID    string `json:"process_id"`
	PDFAvailable bool   `json:"pdf_available"`
	FromCache    bool   `json:"from_cache"`
}

// ProcessRecord tracks one run of the processing flow. It lives only in memory.
type ProcessRecord struct {
	ID        string          `json:"process_id"`
	Status    ProcessStatus   `json:"status"`
	Tasks     ProcessTasks    `json:"tasks"`
	Results   *ProcessResults `json:"results,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Report        []byte         `json:"-"`
	ReportContent *ReportContent `json:"-"`
}

func NewProcessRecord(id string, now time.Time) *ProcessRecord {
	return &ProcessRecord{
		ID:        id,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *ProcessRecord) Terminal() bool {
	return r.Status != StatusProcessing
}

// Complete moves a processing record to completed. Terminal records are left untouched.
func (r *ProcessRecord) Complete(results *ProcessResults, report []byte, content *ReportContent) bool {
	if r.Terminal() {
		return false
	}
	r.Status = StatusCompleted
	r.Results = results
	r.Report = report
	r.ReportContent = content
	return true
}

// Fail moves a processing record to error. Terminal records are left untouched.
func (r *ProcessRecord) Fail(message string) bool {
	if r.Terminal() {
		return false
	}
	r.Status = StatusError
	r.Error = message
	return true
}

func (r *ProcessRecord) PDFAvailable() bool {
	return len(r.Report) > 0
}
