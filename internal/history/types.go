package history

import "time"

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

type TaskOutcome struct {
	Task         string  `json:"task"`
	Status       Status  `json:"status"`
	DurationMS   *int    `json:"duration_ms"`
	ErrorMessage *string `json:"error_message"`
}

type Run struct {
	Name      string         `json:"run_name"`
	Timestamp time.Time      `json:"timestamp"`
	Total     int            `json:"total"`
	Success   int            `json:"success"`
	Failed    int            `json:"failed"`
	Timeout   int            `json:"timeout"`
	Rate      float64        `json:"rate"`
	Tasks     []TaskOutcome  `json:"tasks"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// FailingTasks returns the identifiers of tasks in the run that did not
// succeed.
func (r *Run) FailingTasks() map[string]bool {
	failing := make(map[string]bool)
	for _, t := range r.Tasks {
		if t.Status != StatusSuccess {
			failing[t.Task] = true
		}
	}
	return failing
}

type History struct {
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
	Runs        []Run     `json:"runs"`
}
