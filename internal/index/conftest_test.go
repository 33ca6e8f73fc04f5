package index

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/vitrine/internal/db"
	"github.com/kailas-cloud/vitrine/internal/domain/search/query"
	"github.com/kailas-cloud/vitrine/internal/domain/search/result"
)

type mockIndex struct {
	page  result.Page
	err   error
	calls int
	delay time.Duration
}

func (m *mockIndex) Search(ctx context.Context, _ query.Request) (result.Page, error) {
	m.calls++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return result.Page{}, ctx.Err()
		}
	}
	return m.page, m.err
}

// mockKVStore implements the cache consumer interface for tests.
type mockKVStore struct {
	data  map[string][]byte
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func testRequest(t *testing.T, term string) query.Request {
	t.Helper()
	req, err := query.NewRequest(query.NewParams("", map[string][]string{"genre": {"map"}}), term, 10)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func testPage() result.Page {
	return result.Page{Total: 2, Hits: []result.Hit{
		result.NewHit("b", map[string][]string{"title": {"Bee"}}),
		result.NewHit("a", map[string][]string{"title": {"Ant"}}),
	}}
}
