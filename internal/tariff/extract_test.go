package tariff

import (
	"errors"
	"testing"
)

func TestExtractPriceElectricity(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain suffix", "Octopus Fissa 12M: 0.1067 €/kWh per la componente energia", "0.1067"},
		{"comma separator", "prezzo luce 0,1067 €/kWh", "0.1067"},
		{"euro prefix", "€0.1067/kWh", "0.1067"},
		{"html comment splice", "0.1067<!-- -->€/kWh", "0.1067"},
		{"spaced unit", "0.1067 € / kWh", "0.1067"},
		{"first occurrence wins", "0.1067 €/kWh poi 0.2000 €/kWh", "0.1067"},
		{"ignores unrelated decimals", "sconto 12.5% — energia a 0.1067 €/kWh", "0.1067"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractPrice(tc.text, Electricity)
			if err != nil {
				t.Fatalf("ExtractPrice: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.String())
			}
		})
	}
}

func TestExtractPriceGas(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain suffix", "gas a 0.8567 €/Smc", "0.8567"},
		{"comma separator", "0,8567 €/Smc", "0.8567"},
		{"euro prefix", "€0.8567/Smc", "0.8567"},
		{"html comment splice", "0.8567<!-- -->€/Smc", "0.8567"},
		{"mc fallback spelling", "0.8567 €/mc", "0.8567"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractPrice(tc.text, Gas)
			if err != nil {
				t.Fatalf("ExtractPrice: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.String())
			}
		})
	}
}

func TestExtractPriceRequiresUnitToken(t *testing.T) {
	// A euro amount without the commodity's unit token must not be picked up;
	// the gas price on a shared page is not an electricity price.
	if _, err := ExtractPrice("gas a 0.8200 €/Smc", Electricity); !errors.Is(err, ErrPriceNotFound) {
		t.Fatalf("expected ErrPriceNotFound, got %v", err)
	}
}

func TestExtractPriceNotFound(t *testing.T) {
	for _, text := range []string{"", "nessun prezzo qui", "tariffa variabile, vedi dettaglio"} {
		if _, err := ExtractPrice(text, Electricity); !errors.Is(err, ErrPriceNotFound) {
			t.Fatalf("expected ErrPriceNotFound for %q, got %v", text, err)
		}
	}
}

func TestParseCommodity(t *testing.T) {
	if c, err := Parse("gas"); err != nil || c != Gas {
		t.Fatalf("Parse(gas) = %v, %v", c, err)
	}
	if _, err := Parse("water"); err == nil {
		t.Fatal("expected error for unknown commodity")
	}
}

func TestCommodityUnit(t *testing.T) {
	if Electricity.Unit() != "€/kWh" {
		t.Fatalf("unexpected electricity unit %s", Electricity.Unit())
	}
	if Gas.Unit() != "€/Smc" {
		t.Fatalf("unexpected gas unit %s", Gas.Unit())
	}
}
