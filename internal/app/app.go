package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"octopus-price-alerts/internal/alerting"
	"octopus-price-alerts/internal/config"
	"octopus-price-alerts/internal/fetcher"
	"octopus-price-alerts/internal/scheduler"
	"octopus-price-alerts/internal/service"
	"octopus-price-alerts/internal/state"
	"octopus-price-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newPageFetcher() fetcher.PageFetcher {
	return fetcher.NewPage(fetcher.PageOptions{
		Timeout:   a.Config.Fetch.Timeout,
		UserAgent: a.Config.Fetch.UserAgent,
	}, a.Logger)
}

func (a *App) newStateStore() state.Store {
	return state.NewFileStore(a.Config.State.Path, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		timeout := a.Config.Alerting.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, timeout, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newService(store *storage.Store) *service.Service {
	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("telegram not configured; alerts will not be delivered")
	}

	var samples storage.PriceSampleStore
	var alerts storage.AlertStore
	if store != nil {
		samples = store
		alerts = store
	}

	return service.New(a.Config, a.newPageFetcher(), a.newStateStore(), notifier, samples, alerts, a.Logger)
}

// Check performs a single price check over every configured commodity.
// Per-commodity fetch and notify failures are logged and skipped; the
// command still exits zero.
func (a *App) Check(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Debug().Msg("database.dsn not configured; price history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	return a.newService(store).CheckAll(ctx)
}

// Watch runs the periodic check loop until the process is signalled.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; price history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToInterval,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc := a.newService(store)

	a.Logger.Info().Dur("interval", a.Config.Scheduler.Interval).Msg("starting price watch")
	err = sched.Run(ctx, svc.RunScheduled)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("price watch terminated with error")
		return err
	}

	a.Logger.Info().Msg("price watch stopped")
	return nil
}

// ExportOptions hold parameters for exporting historical samples.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit  int
	Alerts bool
}
