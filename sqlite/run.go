package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/webcrawler"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ webcrawler.RunService = (*RunService)(nil)

// RunService implements webcrawler.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun stores a run together with its downloaded and failed pages.
func (s *RunService) CreateRun(ctx context.Context, run *webcrawler.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, root_url, depth, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, run.RootURL, run.Depth,
		run.StartedAt.UTC().Format(time.RFC3339), run.FinishedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_pages (run_id, url, failed, error)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, url := range run.Downloaded {
		if _, err := stmt.ExecContext(ctx, id, url, false, ""); err != nil {
			return err
		}
	}
	for url, msg := range run.Errors {
		if _, err := stmt.ExecContext(ctx, id, url, true, msg); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	run.ID = id
	return nil
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*webcrawler.Run, error) {
	runs, err := s.findRuns(ctx, "WHERE id = ?", []any{id}, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, webcrawler.Errorf(webcrawler.ENOTFOUND, "run not found")
	}
	return runs[0], nil
}

// FindRuns retrieves runs matching the filter, most recent first.
func (s *RunService) FindRuns(ctx context.Context, filter webcrawler.RunFilter) ([]*webcrawler.Run, error) {
	where := "WHERE 1=1"
	var args []any
	if filter.RootURL != nil {
		where += " AND root_url = ?"
		args = append(args, *filter.RootURL)
	}
	return s.findRuns(ctx, where, args, filter.Limit, filter.Offset)
}

func (s *RunService) findRuns(ctx context.Context, where string, args []any, limit, offset int) ([]*webcrawler.Run, error) {
	var query strings.Builder
	query.WriteString("SELECT id, root_url, depth, started_at, finished_at FROM runs ")
	query.WriteString(where)
	query.WriteString(" ORDER BY started_at DESC, rowid DESC")
	appendPagination(&query, &args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*webcrawler.Run
	for rows.Next() {
		var run webcrawler.Run
		var startedAt, finishedAt string
		if err := rows.Scan(&run.ID, &run.RootURL, &run.Depth, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, run := range runs {
		if err := s.attachPages(ctx, run); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// attachPages loads the downloaded and failed pages of run.
func (s *RunService) attachPages(ctx context.Context, run *webcrawler.Run) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, failed, error FROM run_pages WHERE run_id = ? ORDER BY url
	`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	run.Errors = make(map[string]string)
	for rows.Next() {
		var url, msg string
		var failed bool
		if err := rows.Scan(&url, &failed, &msg); err != nil {
			return err
		}
		if failed {
			run.Errors[url] = msg
		} else {
			run.Downloaded = append(run.Downloaded, url)
		}
	}
	return rows.Err()
}
