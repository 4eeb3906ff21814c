package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/tariff"
)

// PriceSample records one observed tariff price for a commodity.
type PriceSample struct {
	ID        int64
	Commodity tariff.Commodity
	CheckedAt time.Time
	Price     decimal.Decimal
	Target    decimal.Decimal
	Unit      string
	Status    string
	Error     *string
	CreatedAt time.Time
}

// AlertRecord captures an emitted price alert for auditing.
type AlertRecord struct {
	ID        int64
	Commodity tariff.Commodity
	Price     decimal.Decimal
	Target    decimal.Decimal
	URL       string
	CreatedAt time.Time
}
