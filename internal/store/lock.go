package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLocked means another process already holds the store. Only one process may own a
// snapshot at a time, since every write replaces the whole document.
var ErrLocked = errors.New("store is held by another process")

// advisoryLockKey identifies the store in pg_try_advisory_lock.
const advisoryLockKey int64 = 0x7265737461757261

// acquireAdvisoryLock holds a session-level advisory lock on a dedicated pool connection
// until the returned release func runs.
func acquireAdvisoryLock(ctx context.Context, pool *pgxpool.Pool) (func(), error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}
	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, advisoryLockKey).Scan(&ok); err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	if !ok {
		conn.Release()
		return nil, ErrLocked
	}
	return func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
		conn.Release()
	}, nil
}
