package core

// CaseStatus represents the execution status of a test case.
type CaseStatus int

const (
	StatusPending CaseStatus = iota // not yet started
	StatusRunning                   // currently executing
	StatusPassed                    // completed successfully
	StatusFailed                    // assertion failed
	StatusBroken                    // unexpected error (infrastructure, panic)
	StatusSkipped                   // filtered out or not executed
)

// String returns the string representation of CaseStatus.
func (s CaseStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusBroken:
		return "broken"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state.
func (s CaseStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusBroken, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the status indicates success.
func (s CaseStatus) IsSuccess() bool {
	return s == StatusPassed || s == StatusSkipped
}
