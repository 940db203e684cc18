package webcrawler

import (
	"context"
	"time"
)

// Run is a recorded crawl.
type Run struct {
	ID      string `json:"id"`
	RootURL string `json:"rootURL"`
	Depth   int    `json:"depth"`

	// Downloaded lists the URLs fetched successfully.
	Downloaded []string `json:"downloaded"`

	// Errors maps failed URLs to their error messages.
	Errors map[string]string `json:"errors"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// NewRun builds a Run from the result of a crawl.
func NewRun(rootURL string, depth int, result *Result, started, finished time.Time) *Run {
	run := &Run{
		RootURL:    rootURL,
		Depth:      depth,
		Errors:     make(map[string]string),
		StartedAt:  started,
		FinishedAt: finished,
	}
	if result == nil {
		return run
	}
	run.Downloaded = append(run.Downloaded, result.Downloaded...)
	for url, err := range result.Errors {
		run.Errors[url] = ErrorMessage(err)
	}
	return run
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.RootURL == "" {
		return Errorf(EINVALID, "run root URL required")
	}
	if r.Depth < 1 {
		return Errorf(EINVALID, "run depth must be at least 1")
	}
	return nil
}

// RunService represents a service for managing recorded crawls.
type RunService interface {
	// CreateRun stores a new run and assigns its ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run by ID, including its pages.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	RootURL *string

	Offset int
	Limit  int
}
