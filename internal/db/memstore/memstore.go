// Package memstore is an in-process stand-in for the Redis store used by
// repository tests. It implements the hash, set, kv and transaction parts of
// db.Store with WATCH semantics based on per-key versions. Like a Redis
// Cluster, it refuses a transaction whose keys span hash slots.
package memstore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/kailas-cloud/vitrine/internal/db"
)

// Store is a goroutine-safe in-memory store.
type Store struct {
	mu       sync.Mutex
	hashes   map[string]map[string]string
	sets     map[string]map[string]struct{}
	values   map[string][]byte
	versions map[string]uint64

	// Fail makes the named operation (db.Op* constant) return the error.
	Fail map[string]error
	// BeforeCommit runs inside Atomic after the body and before the commit.
	// Tests use it to simulate a concurrent writer.
	BeforeCommit func(s *Store)
}

// New returns an empty store.
func New() *Store {
	return &Store{
		hashes:   make(map[string]map[string]string),
		sets:     make(map[string]map[string]struct{}),
		values:   make(map[string][]byte),
		versions: make(map[string]uint64),
		Fail:     make(map[string]error),
	}
}

func (s *Store) fail(op string) error {
	if err, ok := s.Fail[op]; ok && err != nil {
		return &db.Error{Op: op, Err: err}
	}
	return nil
}

func (s *Store) touch(key string) { s.versions[key]++ }

// Ping always succeeds unless PING is set to fail.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail("PING")
}

// HSet merges fields into the hash at key.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpHSet); err != nil {
		return err
	}
	s.hset(key, fields)
	return nil
}

func (s *Store) hset(key string, fields map[string]string) {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	maps.Copy(h, fields)
	s.touch(key)
}

// HSetMulti stores several hashes.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for _, it := range items {
		if err := s.HSet(ctx, it.Key, it.Fields); err != nil {
			return err
		}
	}
	return nil
}

// HGetAll returns a copy of the hash, empty when absent.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpHGetAll); err != nil {
		return nil, err
	}
	return maps.Clone(s.hashes[key]), nil
}

// HGetAllMulti returns one map per key, in key order.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		m, err := s.HGetAll(ctx, k)
		if err != nil {
			return nil, err
		}
		if m == nil {
			m = map[string]string{}
		}
		out[i] = m
	}
	return out, nil
}

// Del removes keys of any type.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpDel); err != nil {
		return err
	}
	s.del(keys...)
	return nil
}

func (s *Store) del(keys ...string) {
	for _, k := range keys {
		delete(s.hashes, k)
		delete(s.sets, k)
		delete(s.values, k)
		s.touch(k)
	}
}

// Exists reports whether key holds any value.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpExists); err != nil {
		return false, err
	}
	_, h := s.hashes[key]
	_, st := s.sets[key]
	_, v := s.values[key]
	return h || st || v, nil
}

// SAdd adds members to the set at key.
func (s *Store) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpSAdd); err != nil {
		return err
	}
	s.sadd(key, members...)
	return nil
}

func (s *Store) sadd(key string, members ...string) {
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	s.touch(key)
}

// SRem removes members from the set at key.
func (s *Store) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpSRem); err != nil {
		return err
	}
	s.srem(key, members...)
	return nil
}

func (s *Store) srem(key string, members ...string) {
	set := s.sets[key]
	for _, m := range members {
		delete(set, m)
	}
	if len(set) == 0 {
		delete(s.sets, key)
	}
	s.touch(key)
}

// SMembers returns the set members sorted.
func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpSMembers); err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(s.sets[key])), nil
}

// Get returns the string value at key or db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpGet); err != nil {
		return nil, err
	}
	v, ok := s.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

// SetNX stores value only when key is absent.
func (s *Store) SetNX(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail(db.OpSet); err != nil {
		return err
	}
	if _, ok := s.values[key]; ok {
		return db.ErrKeyExists
	}
	s.values[key] = slices.Clone(value)
	s.touch(key)
	return nil
}

// Keys lists every key currently holding data, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.hashes {
		keys = append(keys, k)
	}
	for k := range s.sets {
		keys = append(keys, k)
	}
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Atomic emulates WATCH/MULTI/EXEC: writes queued by fn are applied only if
// none of the watched keys changed since fn started.
func (s *Store) Atomic(
	ctx context.Context, watch []string,
	fn func(ctx context.Context, r db.HashReader, tx db.Tx) error,
) error {
	s.mu.Lock()
	if err := s.fail(db.OpWatch); err != nil {
		s.mu.Unlock()
		return err
	}
	seen := make(map[string]uint64, len(watch))
	for _, k := range watch {
		seen[k] = s.versions[k]
	}
	s.mu.Unlock()

	q := &queue{}
	if err := fn(ctx, s, q); err != nil {
		return err
	}
	if len(q.ops) == 0 {
		return nil
	}
	if err := sameSlot(append(slices.Clone(watch), q.keys...)); err != nil {
		return err
	}
	if s.BeforeCommit != nil {
		s.BeforeCommit(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range seen {
		if s.versions[k] != v {
			return db.ErrTxConflict
		}
	}
	if err := s.fail(db.OpExec); err != nil {
		return err
	}
	for _, op := range q.ops {
		op(s)
	}
	return nil
}

// errCrossSlot mirrors the reply a Redis Cluster gives a transaction that
// spans slots.
var errCrossSlot = errors.New("CROSSSLOT Keys in request don't hash to the same slot")

func sameSlot(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys[1:] {
		if db.HashSlot(k) != db.HashSlot(keys[0]) {
			return &db.Error{Op: db.OpExec, Err: errCrossSlot}
		}
	}
	return nil
}

type queue struct {
	ops  []func(s *Store)
	keys []string
}

func (q *queue) HSet(key string, fields map[string]string) {
	q.keys = append(q.keys, key)
	fields = maps.Clone(fields)
	q.ops = append(q.ops, func(s *Store) { s.hset(key, fields) })
}

func (q *queue) Del(keys ...string) {
	keys = slices.Clone(keys)
	q.keys = append(q.keys, keys...)
	q.ops = append(q.ops, func(s *Store) { s.del(keys...) })
}

func (q *queue) SAdd(key string, members ...string) {
	q.keys = append(q.keys, key)
	members = slices.Clone(members)
	q.ops = append(q.ops, func(s *Store) { s.sadd(key, members...) })
}

func (q *queue) SRem(key string, members ...string) {
	q.keys = append(q.keys, key)
	members = slices.Clone(members)
	q.ops = append(q.ops, func(s *Store) { s.srem(key, members...) })
}
