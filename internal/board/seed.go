// internal/board/seed.go
package board

import (
	"fmt"
	"os"
	"time"

	"jobboard-agent/internal/intent"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Jobs []seedJob `yaml:"jobs"`
}

// seedJob mirrors Job but expresses the follow-up relative to load time.
type seedJob struct {
	Company        string `yaml:"company"`
	Role           string `yaml:"role"`
	Location       string `yaml:"location"`
	Link           string `yaml:"link"`
	Notes          string `yaml:"notes"`
	Status         Status `yaml:"status"`
	FollowUpInDays *int   `yaml:"follow_up_in_days"`
}

// LoadSeedFile reads sample jobs from YAML. Every job gets a fresh ID and
// timestamps relative to now.
func LoadSeedFile(path string, now time.Time) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	jobs := make([]Job, 0, len(f.Jobs))
	for i, s := range f.Jobs {
		// keep file order as board order
		ts := now.Add(-time.Duration(i) * time.Millisecond)
		job := Job{
			ID:        uuid.NewString(),
			Company:   s.Company,
			Role:      s.Role,
			Location:  s.Location,
			Link:      s.Link,
			Notes:     s.Notes,
			Status:    s.Status,
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		if job.Status == "" {
			job.Status = intent.StatusApplied
		}
		if s.FollowUpInDays != nil {
			t := now.AddDate(0, 0, *s.FollowUpInDays)
			job.FollowUpAt = &t
		}
		if err := ValidateJob(job); err != nil {
			return nil, fmt.Errorf("seed job %d: %w", i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
