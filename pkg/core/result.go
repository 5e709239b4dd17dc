package core

import "time"

// Attachment is a file captured during case execution, referenced by the
// report layer.
type Attachment struct {
	Name        string `json:"name"`        // descriptive name: screenshot, failure screenshot
	ContentType string `json:"contentType"` // MIME type
	Path        string `json:"path"`        // absolute path on disk
}

// Common content types.
const (
	ContentTypePNG  = "image/png"
	ContentTypeText = "text/plain"
)

// NewScreenshotAttachment creates a screenshot attachment.
func NewScreenshotAttachment(name, path string) Attachment {
	return Attachment{Name: name, ContentType: ContentTypePNG, Path: path}
}

// StepRecord is one logged step inside a case, shown in reports.
type StepRecord struct {
	Name      string        `json:"name"`
	Status    CaseStatus    `json:"status"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
}

// CaseResult captures the complete outcome of one test case execution.
type CaseResult struct {
	Name     string   `json:"name"`
	FullName string   `json:"fullName"`
	Feature  string   `json:"feature,omitempty"`
	Story    string   `json:"story,omitempty"`
	Severity string   `json:"severity,omitempty"`
	Markers  []string `json:"markers,omitempty"`

	Status   CaseStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Message string `json:"message,omitempty"` // failure message
	Trace   string `json:"trace,omitempty"`   // stack or log excerpt

	// Retry tracking
	Attempt     int  `json:"attempt"`         // 1-based
	MaxAttempts int  `json:"maxAttempts"`     // reruns + 1
	Flaky       bool `json:"flaky,omitempty"` // passed after rerun

	Steps       []StepRecord `json:"steps,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	Device *Device `json:"device,omitempty"` // device the case ran on
}

// RunResult captures the outcome of a whole run.
type RunResult struct {
	RunID     string        `json:"runId"`
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	Cases []CaseResult `json:"cases"`

	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Broken  int `json:"broken"`
	Skipped int `json:"skipped"`
	Flaky   int `json:"flaky,omitempty"`
}

// ComputeSummary recalculates the counters from the Cases slice.
func (r *RunResult) ComputeSummary() {
	r.Total = len(r.Cases)
	r.Passed, r.Failed, r.Broken, r.Skipped, r.Flaky = 0, 0, 0, 0, 0

	for _, c := range r.Cases {
		switch c.Status {
		case StatusPassed:
			r.Passed++
		case StatusFailed:
			r.Failed++
		case StatusBroken:
			r.Broken++
		case StatusSkipped:
			r.Skipped++
		}
		if c.Flaky {
			r.Flaky++
		}
	}
}

// Success returns true when every executed case passed.
func (r *RunResult) Success() bool {
	for _, c := range r.Cases {
		if !c.Status.IsSuccess() {
			return false
		}
	}
	return true
}
