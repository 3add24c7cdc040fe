package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"catalogfeed/internal/models"
	"catalogfeed/internal/services/graph"
	"catalogfeed/internal/settings"
	"catalogfeed/internal/stores"
)

type fakeAPI struct {
	mu sync.Mutex

	feeds     []graph.Feed
	listErr   error
	createID  string
	createErr error
	// getFeedFailures makes the first n GetFeed calls fail; -1 fails forever.
	getFeedFailures int
	pushErr         error
	deleteErr       error
	// pushStarted receives a value when PushFeed is entered; pushGate, when
	// set, holds PushFeed until it is closed.
	pushStarted chan struct{}
	pushGate    chan struct{}

	listCalls   int
	createCalls int
	getCalls    int
	pushCalls   int
	pushedFeed  string
	pushedPath  string
	deleted     []string
	// catalogs lists the catalogue of every ListFeeds and CreateFeed call.
	catalogs []string
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.createCalls + f.getCalls + f.pushCalls + len(f.deleted)
}

func (f *fakeAPI) ListFeeds(ctx context.Context, catalogID string) ([]graph.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.catalogs = append(f.catalogs, catalogID)
	return f.feeds, f.listErr
}

func (f *fakeAPI) CreateFeed(ctx context.Context, catalogID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.catalogs = append(f.catalogs, catalogID)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *fakeAPI) GetFeed(ctx context.Context, feedID string) (*graph.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getFeedFailures < 0 || f.getCalls <= f.getFeedFailures {
		return nil, &graph.APIError{StatusCode: 400, Message: "feed not ready"}
	}
	return &graph.Feed{ID: feedID, Name: FeedName}, nil
}

func (f *fakeAPI) PushFeed(ctx context.Context, feedID, path string) (*graph.UploadResult, error) {
	if f.pushStarted != nil {
		f.pushStarted <- struct{}{}
	}
	if f.pushGate != nil {
		<-f.pushGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushCalls++
	f.pushedFeed = feedID
	f.pushedPath = path
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	return &graph.UploadResult{ID: "upload-1", Raw: []byte(`{"id":"upload-1"}`)}, nil
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, catalogID, retailerID string) (*graph.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, catalogID+"/"+retailerID)
	return &graph.BatchResult{Handles: []string{"h-" + retailerID}}, nil
}

func (f *fakeAPI) session() Session {
	return func(accessToken string, debug bool) FeedAPI { return f }
}

type fakeConfig struct {
	mu       sync.Mutex
	values   map[stores.Scope]settings.StoreSettings
	saved    map[stores.Scope]string
	saveErr  error
	cleaned  int
	resolved int
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{
		values: make(map[stores.Scope]settings.StoreSettings),
		saved:  make(map[stores.Scope]string),
	}
}

func (c *fakeConfig) Resolve(ctx context.Context, scope stores.Scope) (settings.StoreSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolved++
	s := c.values[scope]
	s.Scope = scope
	return s, nil
}

func (c *fakeConfig) SaveConfig(ctx context.Context, path, value string, scope stores.Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	if path != settings.PathFeedID {
		return fmt.Errorf("unexpected path %s", path)
	}
	c.saved[scope] = value
	return nil
}

func (c *fakeConfig) CleanCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleaned++
}

// pagedRetriever serves fixed products in pages of pageSize.
type pagedRetriever struct {
	name     string
	pageSize int
	products []*models.Product
	failAt   int // offset at which Retrieve fails; -1 never
	offsets  []int
}

func (r *pagedRetriever) Name() string  { return r.name }
func (r *pagedRetriever) PageSize() int { return r.pageSize }

func (r *pagedRetriever) Retrieve(ctx context.Context, scope stores.Scope, offset int) ([]*models.Product, error) {
	r.offsets = append(r.offsets, offset)
	if r.failAt >= 0 && offset >= r.failAt {
		return nil, errors.New("database went away")
	}
	if offset >= len(r.products) {
		return nil, nil
	}
	end := offset + r.pageSize
	if end > len(r.products) {
		end = len(r.products)
	}
	return r.products[offset:end], nil
}

func products(prefix string, n int) []*models.Product {
	out := make([]*models.Product, n)
	for i := range out {
		out[i] = &models.Product{
			ID:       fmt.Sprintf("%s-%d", prefix, i+1),
			SKU:      fmt.Sprintf("%s-sku-%d", prefix, i+1),
			Title:    fmt.Sprintf("%s product %d", prefix, i+1),
			Price:    10,
			Quantity: i,
		}
	}
	return out
}

// memorySink records rows in memory and tracks the lock.
type memorySink struct {
	rows      [][]string
	locked    bool
	lockCalls int
	unlocks   int
	failAfter int // fail WriteRow once this many rows were written; 0 never
}

func (s *memorySink) Lock() error {
	s.locked = true
	s.lockCalls++
	return nil
}

func (s *memorySink) Unlock() error {
	s.locked = false
	s.unlocks++
	return nil
}

func (s *memorySink) WriteRow(fields []string) error {
	if !s.locked {
		return errors.New("write without lock")
	}
	if s.failAfter > 0 && len(s.rows) >= s.failAfter {
		return &ArtifactError{Op: "write", Path: "memory", Err: errors.New("disk full")}
	}
	s.rows = append(s.rows, fields)
	return nil
}
