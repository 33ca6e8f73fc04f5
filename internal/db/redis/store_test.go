package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/vitrine/internal/db"
)

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

func TestWaitForReady_RetriesUntilPong(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(errors.New("connection refused"))),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG"))),
	)

	if err := NewStoreForTest(c).WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := NewStoreForTest(c).WaitForReady(context.Background(), 120*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected timeout carrying last ping error, got %v", err)
	}
}

func TestIsRedisErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		sub  string
		want bool
	}{
		{"case-insensitive match", mock.Result(mock.RedisError("Index already exists")).Error(), "index already exists", true},
		{"other server error", mock.Result(mock.RedisError("Unknown Index name")).Error(), "already exists", false},
		{"not a server error", errors.New("index already exists"), "index already exists", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRedisErr(tc.err, tc.sub); got != tc.want {
				t.Errorf("isRedisErr = %v, want %v", got, tc.want)
			}
		})
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "vitrine:search:ex:1"
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "vitrine:search:ex:1", map[string]string{"title": "Maps"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET"
		})).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.HSet(context.Background(), "k", map[string]string{"f": "v"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "k")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"title":  mock.RedisString("Maps"),
			"weight": mock.RedisString("2"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["title"] != "Maps" || m["weight"] != "2" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "k")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if _, err := s.HGetAll(context.Background(), "k"); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f1": "v1"}},
		{Key: "k2", Fields: map[string]string{"f2": "v2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAllMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"f": mock.RedisString("a"),
			})),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
		})

	s := NewStoreForTest(c)
	results, err := s.HGetAllMulti(context.Background(), []string{"k1", "k2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0]["f"] != "a" || len(results[1]) != 0 {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestHGetAllMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	results, err := s.HGetAllMulti(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil, got %v", results)
	}
}

func TestDel_MultipleKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "a", "b")).
		Return(mock.Result(mock.RedisInt64(2)))

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDel_NoKeys(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.Del(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	for _, tc := range []struct {
		reply int64
		want  bool
	}{{1, true}, {0, false}} {
		ctrl := gomock.NewController(t)
		c := mock.NewClient(ctrl)

		c.EXPECT().
			Do(gomock.Any(), mock.Match("EXISTS", "k")).
			Return(mock.Result(mock.RedisInt64(tc.reply)))

		s := NewStoreForTest(c)
		got, err := s.Exists(context.Background(), "k")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Errorf("Exists() = %v, want %v", got, tc.want)
		}
	}
}

// --- kv.go tests ---

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	if _, err := s.Get(context.Background(), "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "k")).
		Return(mock.Result(mock.RedisString("v")))

	s := NewStoreForTest(c)
	got, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get() = %q", got)
	}
}

func TestSetWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "k", "v", "EX", "60")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 60_000_000_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetNX_Created(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "slug:default", "ex-1", "NX")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetNX(context.Background(), "slug:default", []byte("ex-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetNX_Exists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "slug:default", "ex-2", "NX")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	err := s.SetNX(context.Background(), "slug:default", []byte("ex-2"))
	if !errors.Is(err, db.ErrKeyExists) {
		t.Errorf("expected ErrKeyExists, got %v", err)
	}
}

// --- set.go tests ---

func TestSAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SADD", "set", "a", "b")).
		Return(mock.Result(mock.RedisInt64(2)))

	s := NewStoreForTest(c)
	if err := s.SAdd(context.Background(), "set", "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSRem_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SREM", "set", "a")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.SRem(context.Background(), "set", "a"); !isDBError(err) {
		t.Fatalf("expected db.Error, got %v", err)
	}
}

func TestSMembers(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SMEMBERS", "set")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("a"), mock.RedisString("b"))))

	s := NewStoreForTest(c)
	got, err := s.SMembers(context.Background(), "set")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("SMembers() = %v", got)
	}
}

// --- search.go tests ---

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		q    db.Query
		want string
	}{
		{"match all", db.Query{}, "*"},
		{
			"text and term are separate clauses",
			db.Query{Text: []string{"New Mexico", "Noorder deel"}},
			"(New Mexico) (Noorder deel)",
		},
		{
			"scoped text with filters",
			db.Query{
				TextFields: []string{"title", "description"},
				Text:       []string{"maps"},
				Filters:    []db.TagFilter{{Field: "genre", Value: "map"}, {Field: "language", Value: "New Dutch"}},
			},
			`@title|description:(maps) @genre:{map} @language:{New\ Dutch}`,
		},
		{
			"escapes query syntax",
			db.Query{Text: []string{"'t Noorder-deel (1650)"}},
			`(\'t Noorder\-deel \(1650\))`,
		},
		{"blank text ignored", db.Query{Text: []string{"  "}}, "*"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildQuery(&tc.q); got != tc.want {
				t.Errorf("BuildQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSearch_ParsesHitsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return len(cmd) > 3 && cmd[0] == "FT.SEARCH" && cmd[1] == "items" && cmd[2] == "(maps) @genre:{map}"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(7),
			mock.RedisString("item:b"),
			mock.RedisArray(mock.RedisString("title"), mock.RedisString("B")),
			mock.RedisString("item:a"),
			mock.RedisArray(mock.RedisString("title"), mock.RedisString("A")),
		)))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.Query{
		IndexName: "items",
		Text:      []string{"maps"},
		Filters:   []db.TagFilter{{Field: "genre", Value: "map"}},
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 7 {
		t.Errorf("Total = %d, want 7", res.Total)
	}
	if len(res.Entries) != 2 || res.Entries[0].Key != "item:b" || res.Entries[1].Fields["title"] != "A" {
		t.Errorf("entries = %+v", res.Entries)
	}
}

func TestSearch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	res, err := s.Search(context.Background(), &db.Query{IndexName: "items", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("res = %+v", res)
	}
}

func TestSearch_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	if _, err := s.Search(context.Background(), &db.Query{Limit: 10}); err == nil {
		t.Error("expected error for missing index")
	}
	if _, err := s.Search(context.Background(), &db.Query{IndexName: "i"}); err == nil {
		t.Error("expected error for zero limit")
	}
}

// --- index.go tests ---

func TestCreateIndex_SendsDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.CREATE", "items", "ON", "HASH", "PREFIX", "1", "vitrine:item:",
			"SCHEMA", "title", "TEXT", "WEIGHT", "2", "SORTABLE", "genre", "TAG", "SEPARATOR", "|")).
		Return(mock.Result(mock.RedisString("OK")))

	def, err := db.NewIndex("items").
		Prefix("vitrine:item:").
		TextWeighted("title", 2).
		TagSeparated("genre", "|").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := NewStoreForTest(c).CreateIndex(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_InvalidDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	err := NewStoreForTest(c).CreateIndex(context.Background(), &db.IndexDefinition{Name: "items"})
	if !isDBError(err) {
		t.Errorf("expected *db.Error, got %v", err)
	}
}

func TestIndexExists_Unknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "items")).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), "items")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false")
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.CREATE" })).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	def, err := db.NewIndex("items").Text("title").Build()
	if err != nil {
		t.Fatal(err)
	}
	err = s.CreateIndex(context.Background(), def)
	if !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

// --- tx.go tests ---

func dedicated(t *testing.T) (*Store, *mock.DedicatedClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	dc := mock.NewDedicatedClient(ctrl)
	c.EXPECT().
		Dedicated(gomock.Any()).
		DoAndReturn(func(fn func(rueidis.DedicatedClient) error) error { return fn(dc) })
	return NewStoreForTest(c), dc
}

func queueOne(_ context.Context, r db.HashReader, tx db.Tx) error {
	tx.SAdd("set", "m1")
	return nil
}

func TestAtomic_Commits(t *testing.T) {
	s, dc := dedicated(t)

	gomock.InOrder(
		dc.EXPECT().
			Do(gomock.Any(), mock.Match("WATCH", "k1")).
			Return(mock.Result(mock.RedisString("OK"))),
		dc.EXPECT().
			Do(gomock.Any(), mock.Match("HGETALL", "k1")).
			Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
				"v": mock.RedisString("1"),
			}))),
		dc.EXPECT().
			DoMulti(gomock.Any(),
				mock.Match("MULTI"),
				mock.Match("SADD", "set", "m1"),
				mock.Match("EXEC"),
			).
			Return([]rueidis.RedisResult{
				mock.Result(mock.RedisString("OK")),
				mock.Result(mock.RedisString("QUEUED")),
				mock.Result(mock.RedisArray(mock.RedisInt64(1))),
			}),
	)

	var seen map[string]string
	err := s.Atomic(context.Background(), []string{"k1"}, func(ctx context.Context, r db.HashReader, tx db.Tx) error {
		m, err := r.HGetAll(ctx, "k1")
		if err != nil {
			return err
		}
		seen = m
		return queueOne(ctx, r, tx)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen["v"] != "1" {
		t.Errorf("expected watched read v=1, got %v", seen)
	}
}

func TestAtomic_NilExecIsConflict(t *testing.T) {
	s, dc := dedicated(t)

	gomock.InOrder(
		dc.EXPECT().
			Do(gomock.Any(), mock.Match("WATCH", "k1")).
			Return(mock.Result(mock.RedisString("OK"))),
		dc.EXPECT().
			DoMulti(gomock.Any(), mock.Match("MULTI"), mock.Match("SADD", "set", "m1"), mock.Match("EXEC")).
			Return([]rueidis.RedisResult{
				mock.Result(mock.RedisString("OK")),
				mock.Result(mock.RedisString("QUEUED")),
				mock.Result(mock.RedisNil()),
			}),
	)

	err := s.Atomic(context.Background(), []string{"k1"}, queueOne)
	if !errors.Is(err, db.ErrTxConflict) {
		t.Fatalf("expected ErrTxConflict, got %v", err)
	}
}

func TestAtomic_FnErrorUnwatchesWithoutMulti(t *testing.T) {
	s, dc := dedicated(t)
	boom := errors.New("boom")

	gomock.InOrder(
		dc.EXPECT().
			Do(gomock.Any(), mock.Match("WATCH", "k1", "k2")).
			Return(mock.Result(mock.RedisString("OK"))),
		dc.EXPECT().
			Do(gomock.Any(), mock.Match("UNWATCH")).
			Return(mock.Result(mock.RedisString("OK"))),
	)
	// No DoMulti expectation: MULTI/EXEC must never be sent.

	err := s.Atomic(context.Background(), []string{"k1", "k2"}, func(ctx context.Context, r db.HashReader, tx db.Tx) error {
		tx.Del("k1")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestAtomic_ExecReplyError(t *testing.T) {
	s, dc := dedicated(t)

	gomock.InOrder(
		dc.EXPECT().
			Do(gomock.Any(), mock.Match("WATCH", "k1")).
			Return(mock.Result(mock.RedisString("OK"))),
		dc.EXPECT().
			DoMulti(gomock.Any(), mock.Match("MULTI"), mock.Match("SADD", "set", "m1"), mock.Match("EXEC")).
			Return([]rueidis.RedisResult{
				mock.Result(mock.RedisString("OK")),
				mock.Result(mock.RedisString("QUEUED")),
				mock.Result(mock.RedisArray(
					mock.RedisError("WRONGTYPE Operation against a key holding the wrong kind of value"),
				)),
			}),
	)

	err := s.Atomic(context.Background(), []string{"k1"}, queueOne)
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) || db.IsTxConflict(err) {
		t.Fatalf("expected EXEC db.Error, got %v", err)
	}
	if !strings.Contains(err.Error(), "WRONGTYPE") {
		t.Errorf("expected WRONGTYPE in error, got %v", err)
	}
}

func TestAtomic_WatchError(t *testing.T) {
	s, dc := dedicated(t)

	dc.EXPECT().
		Do(gomock.Any(), mock.Match("WATCH", "k1")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	called := false
	err := s.Atomic(context.Background(), []string{"k1"}, func(context.Context, db.HashReader, db.Tx) error {
		called = true
		return nil
	})
	if !isDBError(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected WATCH db.Error, got %v", err)
	}
	if called {
		t.Error("fn must not run when WATCH fails")
	}
}
