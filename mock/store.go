package mock

import (
	"context"

	"github.com/fwojciec/webcrawler"
)

var _ webcrawler.ContentStore = (*ContentStore)(nil)

// ContentStore is a mock implementation of webcrawler.ContentStore.
type ContentStore struct {
	GetFn func(ctx context.Context, url string) (*webcrawler.Page, error)
	PutFn func(ctx context.Context, url string, page *webcrawler.Page) error
}

func (s *ContentStore) Get(ctx context.Context, url string) (*webcrawler.Page, error) {
	return s.GetFn(ctx, url)
}

func (s *ContentStore) Put(ctx context.Context, url string, page *webcrawler.Page) error {
	return s.PutFn(ctx, url, page)
}

var _ webcrawler.RunService = (*RunService)(nil)

// RunService is a mock implementation of webcrawler.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *webcrawler.Run) error
	FindRunByIDFn func(ctx context.Context, id string) (*webcrawler.Run, error)
	FindRunsFn    func(ctx context.Context, filter webcrawler.RunFilter) ([]*webcrawler.Run, error)
}

func (s *RunService) CreateRun(ctx context.Context, run *webcrawler.Run) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*webcrawler.Run, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter webcrawler.RunFilter) ([]*webcrawler.Run, error) {
	return s.FindRunsFn(ctx, filter)
}
