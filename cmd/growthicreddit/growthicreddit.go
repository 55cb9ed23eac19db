package growthicreddit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/growthic-inc/growthic-reddit/common/config"
	"github.com/growthic-inc/growthic-reddit/common/identity"
	"github.com/growthic-inc/growthic-reddit/common/persistence"
	"github.com/growthic-inc/growthic-reddit/common/server"
	"github.com/growthic-inc/growthic-reddit/services/app"
	"github.com/growthic-inc/growthic-reddit/services/app/api"
	"github.com/urfave/cli/v3"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"
)

const (
	ServiceApp       = "app"
	ServiceScheduler = "scheduler"
)

const shutdownGrace = 15 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

func BuildCLI() *cli.Command {
	return &cli.Command{
		Name:  "growthic-reddit",
		Usage: "gr",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "./config/config.yml",
				Usage: "config path is a path relative to root, or an absolute path",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "start growthic reddit services",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "services",
						Aliases: []string{"s"},
						Usage:   "comma-separated list of services (app, scheduler)",
						Value:   strings.Join([]string{ServiceApp, ServiceScheduler}, ","),
					},
				},
				Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
					if cmd.String("services") == "" {
						return ctx, fmt.Errorf("no services provided")
					}

					if _, err := maxprocs.Set(); err != nil {
						slog.Warn("could not set GOMAXPROCS", slog.Any("error", err))
					}

					return ctx, nil
				},
				Action: start,
			},
		},
	}
}

func start(ctx context.Context, cmd *cli.Command) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	defer func() {
		if r := recover(); r != nil {
			var buf bytes.Buffer
			if err := pprof.Lookup("goroutine").WriteTo(&buf, 2); err != nil {
				slog.Error("failed to write goroutine stack trace", slog.Any("error", err))
			}
			slog.Error("application panic", slog.Any("panic", r), slog.String("goroutines", buf.String()))
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	validate := validator.New(validator.WithRequiredStructEnabled())
	conf, err := config.LoadConfig(ctx, cmd.String("config"), validate)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	infra, err := bootstrapInfrastructure(ctx, conf)
	if err != nil {
		return err
	}
	defer infra.Close()

	appInstance, err := app.New(conf, infra.db, infra.verifier, validate)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Best effort. The pool stays not-ready on failure and can be reloaded
	// through the accounts endpoint once credentials are fixed.
	if _, err = appInstance.Pool().Load(ctx, config.DiscoverAccounts()); err != nil {
		slog.Warn("initial account load failed", slog.Any("error", err))
	}

	registry := map[string]Service{
		ServiceApp:       server.New(api.NewRouter(appInstance), conf),
		ServiceScheduler: appInstance,
	}

	g, ctx := errgroup.WithContext(ctx)

	for serviceName := range strings.SplitSeq(cmd.String("services"), ",") {
		name := strings.TrimSpace(serviceName)
		if name == "" {
			continue
		}

		svc, ok := registry[name]
		if !ok {
			return fmt.Errorf("unknown service: %s", name)
		}

		shutdownComplete := make(chan struct{})

		g.Go(func() error {
			slog.Info("starting service", slog.String("service", name))

			stop := context.AfterFunc(ctx, func() {
				closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer closeCancel()

				slog.Info("closing service", slog.String("service", name))
				if err := svc.Close(closeCtx); err != nil {
					slog.Error("closing service", slog.String("service", name), slog.Any("error", err))
				}
				close(shutdownComplete)
			})
			defer stop()

			err := svc.Start(ctx)
			if ctx.Err() != nil {
				<-shutdownComplete
			}

			return err
		})
	}

	if err = g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	return nil
}

type infrastructure struct {
	db       persistence.Persistence
	verifier identity.Verifier
}

func (i *infrastructure) Close() {
	if i.db != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		if err := i.db.Close(closeCtx); err != nil {
			slog.Error("failed to close database", slog.Any("error", err))
		}
	}
}

// bootstrapInfrastructure wires the optional backends. An empty persistence
// driver disables the publish history ledger, an empty identity provider
// disables bearer token verification.
func bootstrapInfrastructure(ctx context.Context, conf *config.Config) (*infrastructure, error) {
	var infra infrastructure

	if conf.Persistence.Driver != "" {
		db, err := persistence.New(ctx, &conf.Persistence)
		if err != nil {
			return nil, fmt.Errorf("create persistence handle: %w", err)
		}
		infra.db = db
	}

	if conf.Identity.Provider != "" {
		verifier, err := identity.New(ctx, &conf.Identity)
		if err != nil {
			infra.Close()
			return nil, fmt.Errorf("create identity verifier: %w", err)
		}
		infra.verifier = verifier
	}

	return &infra, nil
}
