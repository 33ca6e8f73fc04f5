package redis

import (
	"context"
	"errors"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vitrine/internal/db"
)

// Atomic runs fn inside WATCH/MULTI/EXEC on a dedicated connection.
// Reads made through r see the watched keys; writes queued on tx are sent
// only when fn succeeds. A nil EXEC reply means a watched key changed and is
// reported as db.ErrTxConflict.
func (s *Store) Atomic(
	ctx context.Context, watch []string,
	fn func(ctx context.Context, r db.HashReader, tx db.Tx) error,
) error {
	return s.client.Dedicated(func(c rueidis.DedicatedClient) error {
		if len(watch) > 0 {
			if err := c.Do(ctx, c.B().Watch().Key(watch...).Build()).Error(); err != nil {
				return &db.Error{Op: db.OpWatch, Err: err}
			}
		}

		tx := &txQueue{b: c.B()}
		if err := fn(ctx, dedicatedReader{c: c}, tx); err != nil {
			if len(watch) > 0 {
				_ = c.Do(ctx, c.B().Unwatch().Build()).Error()
			}
			return err
		}
		if len(tx.cmds) == 0 {
			if len(watch) > 0 {
				_ = c.Do(ctx, c.B().Unwatch().Build()).Error()
			}
			return nil
		}

		cmds := make([]rueidis.Completed, 0, len(tx.cmds)+2)
		cmds = append(cmds, c.B().Multi().Build())
		cmds = append(cmds, tx.cmds...)
		cmds = append(cmds, c.B().Exec().Build())

		results := c.DoMulti(ctx, cmds...)
		exec := results[len(results)-1]
		if err := exec.Error(); err != nil {
			if rueidis.IsRedisNil(err) {
				return db.ErrTxConflict
			}
			return &db.Error{Op: db.OpExec, Err: err}
		}
		// EXEC succeeded; surface any per-command failure inside it.
		replies, err := exec.ToArray()
		if err != nil {
			return &db.Error{Op: db.OpExec, Err: err}
		}
		var errs []error
		for _, r := range replies {
			if err := r.Error(); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return &db.Error{Op: db.OpExec, Err: errors.Join(errs...)}
		}
		return nil
	})
}

type dedicatedReader struct {
	c rueidis.DedicatedClient
}

func (r dedicatedReader) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return hgetAll(ctx, r.c, key)
}

func (r dedicatedReader) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	return hgetAllMulti(ctx, r.c, keys)
}

type txQueue struct {
	b    rueidis.Builder
	cmds []rueidis.Completed
}

func (q *txQueue) HSet(key string, fields map[string]string) {
	q.cmds = append(q.cmds, hsetCmd(q.b, key, fields))
}

func (q *txQueue) Del(keys ...string) {
	if len(keys) == 0 {
		return
	}
	q.cmds = append(q.cmds, q.b.Del().Key(keys...).Build())
}

func (q *txQueue) SAdd(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	q.cmds = append(q.cmds, q.b.Sadd().Key(key).Member(members...).Build())
}

func (q *txQueue) SRem(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	q.cmds = append(q.cmds, q.b.Srem().Key(key).Member(members...).Build())
}
