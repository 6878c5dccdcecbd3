// internal/board/models.go
package board

import (
	"time"

	"jobboard-agent/internal/intent"
)

// Status is the pipeline column a job sits in.
type Status = intent.Status

// Job is one tracked application.
type Job struct {
	ID         string     `json:"id" yaml:"id"`
	Company    string     `json:"company" yaml:"company"`
	Role       string     `json:"role" yaml:"role"`
	Location   string     `json:"location,omitempty" yaml:"location"`
	Link       string     `json:"link,omitempty" yaml:"link"`
	Notes      string     `json:"notes,omitempty" yaml:"notes"`
	Status     Status     `json:"status" yaml:"status"`
	CreatedAt  time.Time  `json:"createdAt" yaml:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" yaml:"updated_at"`
	FollowUpAt *time.Time `json:"followUpAt,omitempty" yaml:"follow_up_at"`
}

// Clone returns a copy that shares no pointers with j.
func (j Job) Clone() Job {
	if j.FollowUpAt != nil {
		t := *j.FollowUpAt
		j.FollowUpAt = &t
	}
	return j
}

// Label is how a job is shown in summaries: "Company (Role)".
func (j Job) Label() string {
	return j.Company + " (" + j.Role + ")"
}

// NewJobInput is the body accepted when adding a job.
type NewJobInput struct {
	Company    string     `json:"company"`
	Role       string     `json:"role"`
	Location   string     `json:"location"`
	Link       string     `json:"link"`
	Notes      string     `json:"notes"`
	Status     Status     `json:"status"`
	FollowUpAt *time.Time `json:"followUpAt"`
}
