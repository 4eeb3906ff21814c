package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/alerting"
	"octopus-price-alerts/internal/config"
	"octopus-price-alerts/internal/fetcher"
	"octopus-price-alerts/internal/state"
	"octopus-price-alerts/internal/storage"
	"octopus-price-alerts/internal/tariff"
)

// Check describes one commodity to monitor during a run.
type Check struct {
	Commodity tariff.Commodity
	URL       string
	Target    decimal.Decimal
}

// Service orchestrates fetching, extraction, evaluation, alerting, and state
// persistence. Commodities are processed sequentially and independently; a
// failure in one never aborts the others.
type Service struct {
	checks   []Check
	pages    fetcher.PageFetcher
	states   state.Store
	notifier alerting.Notifier
	samples  storage.PriceSampleStore
	alerts   storage.AlertStore
	logger   zerolog.Logger

	markOnFailure bool
	locker        storage.AdvisoryLocker
	lockKey       int64
}

// New constructs the monitoring service.
func New(cfg *config.Config, pages fetcher.PageFetcher, states state.Store, notifier alerting.Notifier, samples storage.PriceSampleStore, alerts storage.AlertStore, logger zerolog.Logger) *Service {
	var locker storage.AdvisoryLocker
	if l, ok := samples.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Service{
		checks:        checksFrom(cfg),
		pages:         pages,
		states:        states,
		notifier:      notifier,
		samples:       samples,
		alerts:        alerts,
		logger:        logger.With().Str("component", "service").Logger(),
		markOnFailure: cfg.Alerting.MarkNotifiedOnFailure,
		locker:        locker,
		lockKey:       cfg.Scheduler.AdvisoryLockKey,
	}
}

func checksFrom(cfg *config.Config) []Check {
	checks := make([]Check, 0, len(tariff.All()))
	for _, c := range tariff.All() {
		cc, ok := cfg.Commodities[c.String()]
		if !ok || !cc.Enabled {
			continue
		}
		checks = append(checks, Check{
			Commodity: c,
			URL:       cc.URL,
			Target:    decimal.NewFromFloat(cc.Target),
		})
	}
	return checks
}

// CheckAll runs one full cycle over every configured commodity: load state,
// fetch → extract → evaluate → notify per commodity, then persist the state
// record. Per-commodity failures are logged and skipped; only a completely
// unusable configuration is an error.
func (s *Service) CheckAll(ctx context.Context) error {
	if len(s.checks) == 0 {
		return fmt.Errorf("no commodities configured")
	}

	mapping, err := s.states.Load(ctx)
	if err != nil {
		// Load degrades internally; an error here means the store itself is broken.
		return fmt.Errorf("load alert state: %w", err)
	}

	mutated := false
	for _, check := range s.checks {
		next, changed := s.checkOne(ctx, check, mapping.Get(check.Commodity))
		if changed {
			mapping[check.Commodity] = next
			mutated = true
		}
	}

	if !mutated {
		return nil
	}

	if err := s.states.Save(ctx, mapping); err != nil {
		// A lost save risks a duplicate alert next run, never a lost one.
		s.logger.Error().Err(err).Msg("failed to persist alert state")
	}
	return nil
}

// checkOne walks a single commodity through the per-run cycle. It returns the
// commodity's next alert state and whether the state changed; fetch and
// extraction failures leave the prior state untouched.
func (s *Service) checkOne(ctx context.Context, check Check, prior state.AlertState) (state.AlertState, bool) {
	logger := s.logger.With().Str("commodity", check.Commodity.String()).Logger()
	checkedAt := time.Now().UTC()

	logger.Info().Str("url", check.URL).Msg("scraping tariff page")

	text, err := s.pages.FetchPage(ctx, check.URL)
	if err != nil {
		logger.Error().Err(err).Msg("could not fetch tariff page, skipping")
		s.recordSample(ctx, check, checkedAt, decimal.Decimal{}, "errored", err)
		return prior, false
	}

	price, err := tariff.ExtractPrice(text, check.Commodity)
	if err != nil {
		logger.Error().Err(err).Msg("could not determine price, skipping")
		s.recordSample(ctx, check, checkedAt, decimal.Decimal{}, "not_found", err)
		return prior, false
	}

	logger.Info().
		Str("price", price.String()).
		Str("target", check.Target.String()).
		Str("unit", check.Commodity.Unit()).
		Msg("current price discovered")

	next, shouldNotify := alerting.Evaluate(price, check.Target, prior)
	s.recordSample(ctx, check, checkedAt, price, "complete", nil)

	if !shouldNotify {
		if prior.Notified && !next.Notified {
			logger.Info().Msg("price has gone back up, resetting notification lock")
		}
		return next, true
	}

	if err := s.dispatch(ctx, check, price); err != nil {
		logger.Error().Err(err).Msg("failed to dispatch alert")
		if !s.markOnFailure {
			// Keep the prior state so the next run retries the notification.
			return prior, false
		}
		return next, true
	}

	return next, true
}

func (s *Service) dispatch(ctx context.Context, check Check, price decimal.Decimal) error {
	if s.notifier == nil {
		return fmt.Errorf("no notification channel configured")
	}

	note := alerting.Notification{
		Commodity: check.Commodity,
		Price:     price,
		Target:    check.Target,
		URL:       check.URL,
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		return err
	}

	if s.alerts != nil {
		record := storage.AlertRecord{
			Commodity: check.Commodity,
			Price:     price,
			Target:    check.Target,
			URL:       check.URL,
		}
		if _, err := s.alerts.InsertAlert(ctx, record); err != nil {
			s.logger.Error().Err(err).Str("commodity", check.Commodity.String()).Msg("failed to persist alert record")
		}
	}
	return nil
}

func (s *Service) recordSample(ctx context.Context, check Check, checkedAt time.Time, price decimal.Decimal, status string, cause error) {
	if s.samples == nil {
		return
	}

	sample := storage.PriceSample{
		Commodity: check.Commodity,
		CheckedAt: checkedAt,
		Price:     price,
		Target:    check.Target,
		Unit:      check.Commodity.Unit(),
		Status:    status,
	}
	if cause != nil {
		msg := cause.Error()
		sample.Error = &msg
	}

	if _, err := s.samples.InsertPriceSample(ctx, sample); err != nil {
		s.logger.Error().Err(err).Str("commodity", check.Commodity.String()).Msg("failed to persist price sample")
	}
}

// RunScheduled executes one cycle on behalf of the watch loop, guarded by the
// optional postgres advisory lock so overlapping instances skip their tick.
func (s *Service) RunScheduled(ctx context.Context, tick time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Time("tick", tick).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return s.CheckAll(ctx)
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
