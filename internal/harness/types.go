package harness

import "github.com/roach88/dataslice/internal/dataset"

// QueryTrace is the outcome of one query for one student.
type QueryTrace struct {
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
	Error bool   `json:"error"`
}

// StudentTrace records what one student's slice looked like.
type StudentTrace struct {
	StudentID   string         `json:"student_id"`
	Fingerprint string         `json:"fingerprint"`
	Counts      dataset.Counts `json:"counts"`
	Queries     []QueryTrace   `json:"queries"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held for every student.
	Pass bool `json:"pass"`

	// Trace holds one entry per student, in StudentIDs order.
	Trace []StudentTrace `json:"trace"`

	// Errors contains assertion failures prefixed with the student id.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []StudentTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
