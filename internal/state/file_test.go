package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/tariff"
)

func tempStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	return NewFileStore(path, zerolog.Nop()), path
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	store, _ := tempStore(t)
	mapping, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mapping) != 0 {
		t.Fatalf("expected empty mapping, got %#v", mapping)
	}
}

func TestLoadMalformedFileReturnsEmpty(t *testing.T) {
	store, path := tempStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	mapping, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(mapping) != 0 {
		t.Fatalf("expected empty mapping for corrupt file, got %#v", mapping)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := tempStore(t)
	price := decimal.RequireFromString("0.1067")

	in := Mapping{
		tariff.Electricity: {Notified: true, LastPrice: &price},
	}
	if err := store.Save(context.Background(), in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	elec := out.Get(tariff.Electricity)
	if !elec.Notified {
		t.Fatal("electricity should be notified")
	}
	if elec.LastPrice == nil || !elec.LastPrice.Equal(price) {
		t.Fatalf("unexpected last price %v", elec.LastPrice)
	}

	// Missing key reads as the zero state.
	if gas := out.Get(tariff.Gas); gas.Notified || gas.LastPrice != nil {
		t.Fatalf("expected zero state for gas, got %#v", gas)
	}
}

func TestSaveReplacesWholeDocument(t *testing.T) {
	store, path := tempStore(t)

	if err := store.Save(context.Background(), Mapping{tariff.Gas: {Notified: true}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(context.Background(), Mapping{tariff.Electricity: {Notified: true}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"electricity":{"notified":true}}` {
		t.Fatalf("unexpected document: %s", raw)
	}
}

func TestSaveFailureLeavesPreviousState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewFileStore(path, zerolog.Nop())

	if err := store.Save(context.Background(), Mapping{tariff.Gas: {Notified: true}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Make the directory read-only so the temp file cannot be created.
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	if err := store.Save(context.Background(), Mapping{}); err == nil {
		t.Skip("running with privileges that ignore directory permissions")
	}

	mapping, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !mapping.Get(tariff.Gas).Notified {
		t.Fatal("previous state should survive a failed save")
	}
}
