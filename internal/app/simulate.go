package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/config"
	"octopus-price-alerts/internal/fetcher"
	"octopus-price-alerts/internal/service"
	"octopus-price-alerts/internal/state"
	"octopus-price-alerts/internal/tariff"
)

// SimulateAlert 以给定的价格走一遍完整的告警流程，不落盘任何状态。
func (a *App) SimulateAlert(ctx context.Context, commodity tariff.Commodity, price decimal.Decimal) error {
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	cc, ok := a.Config.Commodities[commodity.String()]
	if !ok {
		return fmt.Errorf("commodity %s not configured", commodity)
	}

	cfg := *a.Config
	cfg.Commodities = map[string]config.CommodityConfig{
		commodity.String(): {Enabled: true, URL: cc.URL, Target: cc.Target},
	}

	pages := &staticPageFetcher{text: fmt.Sprintf("%s %s", price.StringFixed(4), commodity.Unit())}
	svc := service.New(&cfg, pages, discardStateStore{}, notifier, nil, nil, a.Logger)

	return svc.CheckAll(ctx)
}

type staticPageFetcher struct {
	text string
}

func (s *staticPageFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	return s.text, nil
}

// discardStateStore keeps simulations away from the real state record.
type discardStateStore struct{}

func (discardStateStore) Load(ctx context.Context) (state.Mapping, error) {
	return state.Mapping{}, nil
}

func (discardStateStore) Save(ctx context.Context, m state.Mapping) error {
	return nil
}

var _ fetcher.PageFetcher = (*staticPageFetcher)(nil)
var _ state.Store = discardStateStore{}
