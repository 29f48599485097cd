// Package ingest validates the results payload handed over by the task
// execution harness before it enters the history.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/benchtrack/benchtrack/internal/history"
)

var (
	ErrMissingResults = errors.New("results file missing or unreadable")
	ErrInvalidPayload = errors.New("invalid results payload")
)

type Summary struct {
	Total   int     `json:"total" validate:"gte=0"`
	Success int     `json:"success" validate:"gte=0"`
	Failed  int     `json:"failed" validate:"gte=0"`
	Timeout int     `json:"timeout" validate:"gte=0"`
	Rate    float64 `json:"rate" validate:"gte=0,lte=100"`
}

type TaskResult struct {
	Task         string  `json:"task" validate:"required"`
	Status       string  `json:"status" validate:"required,oneof=success failed timeout error"`
	DurationMS   *int    `json:"duration_ms"`
	ErrorMessage *string `json:"error_message"`
}

type Payload struct {
	Summary *Summary     `json:"summary" validate:"required"`
	Tasks   []TaskResult `json:"tasks" validate:"dive"`
}

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// LoadFile reads and validates a results payload. A missing or unreadable
// file maps to ErrMissingResults; anything that parses but violates the
// schema maps to ErrInvalidPayload.
func LoadFile(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingResults, err)
	}
	return Parse(data)
}

// Parse decodes and strictly validates a results payload.
func Parse(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := p.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &p, nil
}

func (p *Payload) check() error {
	if err := payloadValidator.Struct(p); err != nil {
		return err
	}
	s := p.Summary
	if s.Success+s.Failed+s.Timeout > s.Total {
		return fmt.Errorf("summary counts %d+%d+%d exceed total %d",
			s.Success, s.Failed, s.Timeout, s.Total)
	}
	seen := make(map[string]bool, len(p.Tasks))
	for _, t := range p.Tasks {
		if seen[t.Task] {
			return fmt.Errorf("duplicate task identifier %q", t.Task)
		}
		seen[t.Task] = true
	}
	return nil
}

// Run builds a history record from the payload. The supplied rate is stored
// as-is, not recomputed from the counts.
func (p *Payload) Run(name string, now time.Time, metadata map[string]any) *history.Run {
	tasks := make([]history.TaskOutcome, len(p.Tasks))
	for i, t := range p.Tasks {
		tasks[i] = history.TaskOutcome{
			Task:         t.Task,
			Status:       history.Status(t.Status),
			DurationMS:   t.DurationMS,
			ErrorMessage: t.ErrorMessage,
		}
	}
	return &history.Run{
		Name:      name,
		Timestamp: now,
		Total:     p.Summary.Total,
		Success:   p.Summary.Success,
		Failed:    p.Summary.Failed,
		Timeout:   p.Summary.Timeout,
		Rate:      p.Summary.Rate,
		Tasks:     tasks,
		Metadata:  metadata,
	}
}
