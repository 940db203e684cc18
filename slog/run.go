package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webcrawler"
)

// Ensure LoggingRunService implements webcrawler.RunService.
var _ webcrawler.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with debug logging.
type LoggingRunService struct {
	next   webcrawler.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next webcrawler.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

func (s *LoggingRunService) CreateRun(ctx context.Context, run *webcrawler.Run) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create run",
			"id", run.ID,
			"url", run.RootURL,
			"downloaded", len(run.Downloaded),
			"errors", len(run.Errors),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRun(ctx, run)
}

func (s *LoggingRunService) FindRunByID(ctx context.Context, id string) (run *webcrawler.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find run",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRunByID(ctx, id)
}

func (s *LoggingRunService) FindRuns(ctx context.Context, filter webcrawler.RunFilter) (runs []*webcrawler.Run, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find runs",
			"count", len(runs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRuns(ctx, filter)
}
