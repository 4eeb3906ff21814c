package alerting

import (
	"testing"

	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/state"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluateFirstDropNotifies(t *testing.T) {
	next, notify := Evaluate(dec("0.1067"), dec("0.11"), state.AlertState{})
	if !notify {
		t.Fatal("first observation below target should notify")
	}
	if !next.Notified {
		t.Fatal("notified flag should be set")
	}
	if next.LastPrice == nil || !next.LastPrice.Equal(dec("0.1067")) {
		t.Fatalf("last price should track observation, got %v", next.LastPrice)
	}
}

func TestEvaluateAlreadyNotifiedStaysQuiet(t *testing.T) {
	prior := state.AlertState{Notified: true}
	next, notify := Evaluate(dec("0.1067"), dec("0.11"), prior)
	if notify {
		t.Fatal("already-notified episode must not re-notify")
	}
	if !next.Notified {
		t.Fatal("notified flag must stay set while below target")
	}
}

func TestEvaluateAtOrAboveTargetRearms(t *testing.T) {
	for _, prior := range []state.AlertState{{}, {Notified: true}} {
		next, notify := Evaluate(dec("0.1150"), dec("0.11"), prior)
		if notify {
			t.Fatal("price at or above target must not notify")
		}
		if next.Notified {
			t.Fatal("notified flag must reset at or above target")
		}
		if next.LastPrice == nil || !next.LastPrice.Equal(dec("0.1150")) {
			t.Fatalf("last price should still be recorded, got %v", next.LastPrice)
		}
	}
}

func TestEvaluateEqualityDoesNotAlert(t *testing.T) {
	next, notify := Evaluate(dec("0.11"), dec("0.11"), state.AlertState{})
	if notify || next.Notified {
		t.Fatal("comparison is strict less-than; equality must not alert")
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	first, notify := Evaluate(dec("0.1067"), dec("0.11"), state.AlertState{})
	if !notify {
		t.Fatal("first evaluation should notify")
	}
	second, notify := Evaluate(dec("0.1067"), dec("0.11"), first)
	if notify {
		t.Fatal("re-evaluating the same observation must not notify again")
	}
	if !second.Notified {
		t.Fatal("state should remain notified")
	}
}

func TestEvaluateEpisodeCycle(t *testing.T) {
	target := dec("0.11")

	st, notify := Evaluate(dec("0.1067"), target, state.AlertState{})
	if !notify {
		t.Fatal("drop should notify")
	}
	st, notify = Evaluate(dec("0.1067"), target, st)
	if notify {
		t.Fatal("same episode should stay quiet")
	}
	st, notify = Evaluate(dec("0.1150"), target, st)
	if notify || st.Notified {
		t.Fatal("recovery should re-arm without notifying")
	}
	_, notify = Evaluate(dec("0.1080"), target, st)
	if !notify {
		t.Fatal("new drop after recovery should notify again")
	}
}
