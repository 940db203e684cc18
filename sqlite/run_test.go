package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/webcrawler"
	"github.com/fwojciec/webcrawler/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRun(root string, started time.Time) *webcrawler.Run {
	return &webcrawler.Run{
		RootURL:    root,
		Depth:      2,
		Downloaded: []string{root, root + "c"},
		Errors:     map[string]string{root + "b": "HTTP 500 for " + root + "b"},
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
	}
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("stores run with generated ID", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		run := newTestRun("https://a.test/", started)

		require.NoError(t, svc.CreateRun(ctx, run))
		assert.NotEmpty(t, run.ID, "ID should be generated")

		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.ID, found.ID)
		assert.Equal(t, "https://a.test/", found.RootURL)
		assert.Equal(t, 2, found.Depth)
		assert.ElementsMatch(t, run.Downloaded, found.Downloaded)
		assert.Equal(t, run.Errors, found.Errors)
		assert.True(t, started.Equal(found.StartedAt))
		assert.True(t, started.Add(2*time.Second).Equal(found.FinishedAt))
	})

	t.Run("stores run without pages", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))
		ctx := context.Background()
		run := &webcrawler.Run{RootURL: "https://a.test/", Depth: 1, StartedAt: time.Now(), FinishedAt: time.Now()}

		require.NoError(t, svc.CreateRun(ctx, run))

		found, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Empty(t, found.Downloaded)
		assert.Empty(t, found.Errors)
	})

	t.Run("rejects invalid run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(setupTestDB(t))

		err := svc.CreateRun(context.Background(), &webcrawler.Run{Depth: 1})

		assert.Equal(t, webcrawler.EINVALID, webcrawler.ErrorCode(err))
	})
}

func TestRunService_FindRunByID(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(setupTestDB(t))

	_, err := svc.FindRunByID(context.Background(), "missing")

	assert.Equal(t, webcrawler.ENOTFOUND, webcrawler.ErrorCode(err))
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*sqlite.RunService, []*webcrawler.Run) {
		t.Helper()
		svc := sqlite.NewRunService(setupTestDB(t))
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		runs := []*webcrawler.Run{
			newTestRun("https://a.test/", base),
			newTestRun("https://b.test/", base.Add(time.Hour)),
			newTestRun("https://a.test/", base.Add(2*time.Hour)),
		}
		for _, run := range runs {
			require.NoError(t, svc.CreateRun(context.Background(), run))
		}
		return svc, runs
	}

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		svc, runs := setup(t)

		found, err := svc.FindRuns(context.Background(), webcrawler.RunFilter{})

		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, runs[2].ID, found[0].ID)
		assert.Equal(t, runs[1].ID, found[1].ID)
		assert.Equal(t, runs[0].ID, found[2].ID)
		assert.Len(t, found[0].Downloaded, 2)
	})

	t.Run("filters by root URL", func(t *testing.T) {
		t.Parallel()

		svc, _ := setup(t)
		root := "https://a.test/"

		found, err := svc.FindRuns(context.Background(), webcrawler.RunFilter{RootURL: &root})

		require.NoError(t, err)
		require.Len(t, found, 2)
		for _, run := range found {
			assert.Equal(t, root, run.RootURL)
		}
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		svc, runs := setup(t)

		page, err := svc.FindRuns(context.Background(), webcrawler.RunFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, runs[1].ID, page[0].ID)

		rest, err := svc.FindRuns(context.Background(), webcrawler.RunFilter{Offset: 2})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, runs[0].ID, rest[0].ID)
	})
}
