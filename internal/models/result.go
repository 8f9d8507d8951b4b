package models

type ProcessResponse struct {
	ProcessID string          `json:"process_id"`
	Status    string          `json:"status"`
	Results   *ProcessResults `json:"results"`
}

// StatusResponse mirrors a ProcessRecord with the report bytes replaced by a marker.
type StatusResponse struct {
	ProcessID string          `json:"process_id"`
	Status    string          `json:"status"`
	Tasks     ProcessTasks    `json:"tasks"`
	Results   *ProcessResults `json:"results"`
	Error     string          `json:"error,omitempty"`
	PDFBuffer *string         `json:"pdf_buffer"`
}

func NewStatusResponse(record ProcessRecord) StatusResponse {
	resp := StatusResponse{
		ProcessID: record.ID,
		Status:    string(record.Status),
		Tasks:     record.Tasks,
		Results:   record.Results,
		Error:     record.Error,
	}
	if record.PDFAvailable() {
		available := "available"
		resp.PDFBuffer = &available
	}
	return resp
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type HealthResponse struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
	Model    ModelHealth    `json:"model"`
}

// DatabaseHealth reports configuration only, never reachability.
type DatabaseHealth struct {
	Configured bool `json:"configured"`
}

type ModelHealth struct {
	Configured bool   `json:"configured"`
	Name       string `json:"name"`
}
