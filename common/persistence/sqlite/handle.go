package sqlite

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/growthic-inc/growthic-reddit/common/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/go-libsql"
)

type Handle struct {
	dbPtr   atomic.Pointer[sqlx.DB]
	running atomic.Bool
	mu      sync.Mutex
}

const schema = `
CREATE TABLE IF NOT EXISTS published_items (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	platform_id  TEXT NOT NULL,
	permalink    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	subreddit    TEXT NOT NULL,
	title        TEXT NOT NULL,
	account      TEXT NOT NULL,
	published_at TIMESTAMP NOT NULL
);
`

func NewHandle(ctx context.Context, config *config.Persistence) (*Handle, error) {
	db, err := sqlx.Open("libsql", config.DSN)
	if err != nil {
		return nil, err
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	handle := &Handle{}

	handle.dbPtr.Store(db)
	handle.running.Store(true)

	return handle, nil
}

func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running.Load() {
		h.running.Swap(false)
		db := h.dbPtr.Swap(nil)
		if db != nil {
			return db.Close()
		}
	}
	return nil
}

func (h *Handle) db() (*sqlx.DB, error) {
	if db := h.dbPtr.Load(); db != nil {
		return db, nil
	}

	return nil, errors.New("no usable database connection found")
}
