package tariff

import "fmt"

// Commodity identifies one of the monitored utility types.
type Commodity string

const (
	Electricity Commodity = "electricity"
	Gas         Commodity = "gas"
)

// All lists the supported commodities in processing order.
func All() []Commodity {
	return []Commodity{Electricity, Gas}
}

// Parse validates a commodity identifier.
func Parse(s string) (Commodity, error) {
	switch Commodity(s) {
	case Electricity:
		return Electricity, nil
	case Gas:
		return Gas, nil
	}
	return "", fmt.Errorf("unknown commodity %q", s)
}

// Unit returns the pricing unit label for the commodity.
func (c Commodity) Unit() string {
	if c == Gas {
		return "€/Smc"
	}
	return "€/kWh"
}

// String implements fmt.Stringer.
func (c Commodity) String() string {
	return string(c)
}
