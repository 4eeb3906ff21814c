package alerting

import (
	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/state"
)

// Evaluate decides the new alert state for a freshly observed price. Exactly
// one notification fires per below-target episode: the first observation
// strictly below target notifies, later ones inside the same episode do not,
// and an observation at or above target re-arms the next episode.
func Evaluate(observation, target decimal.Decimal, prior state.AlertState) (state.AlertState, bool) {
	next := state.AlertState{LastPrice: &observation}

	if observation.GreaterThanOrEqual(target) {
		next.Notified = false
		return next, false
	}

	next.Notified = true
	return next, !prior.Notified
}
