package persistence

import (
	"context"
	"errors"

	"github.com/growthic-inc/growthic-reddit/common/config"
	"github.com/growthic-inc/growthic-reddit/common/persistence/entity"
	"github.com/growthic-inc/growthic-reddit/common/persistence/sqlite"
)

// Persistence is the optional publish history ledger. Accounts and scheduled
// jobs are deliberately not persisted; only records of successfully published
// items are written here, best effort.
type Persistence interface {
	Close(ctx context.Context) error
	RecordPublished(ctx context.Context, in *entity.RecordPublishedInput) (*entity.RecordPublishedOutput, error)
	ListPublished(ctx context.Context, in *entity.ListPublishedInput) (*entity.ListPublishedOutput, error)
}

var ErrUnsupportedPersistenceDriver = errors.New("unsupported persistence driver")

func New(ctx context.Context, config *config.Persistence) (Persistence, error) {
	switch config.Driver {
	case "sqlite":
		handle, err := sqlite.NewHandle(ctx, config)
		if err != nil {
			return nil, err
		}
		return handle, nil
	default:
		return nil, ErrUnsupportedPersistenceDriver
	}
}
