package state

import (
	"context"

	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/tariff"
)

// AlertState is the persisted per-commodity alert status. Notified is true
// only while the most recent observation sat strictly below the target; it
// resets once a price at or above target is seen, re-arming the next alert.
type AlertState struct {
	Notified  bool             `json:"notified"`
	LastPrice *decimal.Decimal `json:"last_price,omitempty"`
}

// Mapping holds the alert state for every known commodity. Missing keys are
// equivalent to a zero AlertState (never notified).
type Mapping map[tariff.Commodity]AlertState

// Get returns the state for a commodity, falling back to the zero value.
func (m Mapping) Get(c tariff.Commodity) AlertState {
	return m[c]
}

// Store persists the commodity → AlertState mapping across runs.
type Store interface {
	Load(ctx context.Context) (Mapping, error)
	Save(ctx context.Context, m Mapping) error
}
