package app

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/growthic-inc/growthic-reddit/common/config"
	"github.com/growthic-inc/growthic-reddit/common/identity"
	"github.com/growthic-inc/growthic-reddit/common/persistence"
	"github.com/growthic-inc/growthic-reddit/services/app/accounts"
	"github.com/growthic-inc/growthic-reddit/services/app/poster"
	"github.com/growthic-inc/growthic-reddit/services/app/scheduler"
	"github.com/sony/sonyflake/v2"
)

type App struct {
	config      *config.Config
	validator   *validator.Validate
	persistence persistence.Persistence
	verifier    identity.Verifier
	sonyflake   *sonyflake.Sonyflake
	// ---
	pool          *accounts.Pool
	postService   poster.Servicer
	jobScheduler  *scheduler.Scheduler
}

func New(
	config *config.Config,
	persistence persistence.Persistence,
	verifier identity.Verifier,
	validate *validator.Validate,
) (*App, error) {
	var st sonyflake.Settings
	sf, err := sonyflake.New(st)
	if err != nil {
		return nil, err
	}

	pool := accounts.New(nil)

	postService, err := poster.NewService(pool, persistence)
	if err != nil {
		return nil, err
	}

	jobScheduler := scheduler.New(postService, sf, config.Scheduler.Tick())

	return &App{
		config:       config,
		validator:    validate,
		persistence:  persistence,
		verifier:     verifier,
		sonyflake:    sf,
		pool:         pool,
		postService:  postService,
		jobScheduler: jobScheduler,
	}, nil
}

// Start runs the deferred comment worker until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.jobScheduler.Start()
	<-ctx.Done()
	return ctx.Err()
}

func (a *App) Close(ctx context.Context) error {
	if err := a.jobScheduler.Close(ctx); err != nil {
		slog.Warn("scheduler shutdown incomplete", slog.Any("error", err))
		return err
	}
	return nil
}

func (a *App) Pool() *accounts.Pool {
	return a.pool
}

func (a *App) PostService() poster.Servicer {
	return a.postService
}

func (a *App) JobScheduler() *scheduler.Scheduler {
	return a.jobScheduler
}

func (a *App) History() persistence.Persistence {
	return a.persistence
}

func (a *App) Verifier() identity.Verifier {
	return a.verifier
}

func (a *App) Validator() *validator.Validate {
	return a.validator
}
