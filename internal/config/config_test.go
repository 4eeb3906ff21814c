package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.State.Path != "state.json" {
		t.Fatalf("unexpected state path %q", cfg.State.Path)
	}

	elec, ok := cfg.Commodities["electricity"]
	if !ok || !elec.Enabled {
		t.Fatal("electricity should be enabled by default")
	}
	if elec.Target != 0.11 {
		t.Fatalf("unexpected electricity target %v", elec.Target)
	}

	gas, ok := cfg.Commodities["gas"]
	if !ok || gas.Target != 0.85 {
		t.Fatalf("unexpected gas config %#v", gas)
	}

	if cfg.Alerting.MarkNotifiedOnFailure {
		t.Fatal("failed-dispatch policy should default to not marking notified")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
commodities:
  electricity:
    enabled: true
    url: https://example.org/tariffe
    target: 0.10
  gas:
    enabled: false
alerting:
  telegram:
    enabled: true
    bot_token: token
    chat_id: chat
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Commodities["electricity"].URL != "https://example.org/tariffe" {
		t.Fatalf("unexpected url %q", cfg.Commodities["electricity"].URL)
	}
	if cfg.Commodities["gas"].Enabled {
		t.Fatal("gas should be disabled")
	}
	if !cfg.Alerting.Telegram.Enabled {
		t.Fatal("telegram should be enabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Commodities["water"] = CommodityConfig{Enabled: true, URL: "x", Target: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown commodity should fail validation")
	}

	cfg = base()
	cfg.Commodities["electricity"] = CommodityConfig{Enabled: true, URL: "", Target: 0.11}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing url should fail validation")
	}

	cfg = base()
	for name, cc := range cfg.Commodities {
		cc.Enabled = false
		cfg.Commodities[name] = cc
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("all commodities disabled should fail validation")
	}

	cfg = base()
	cfg.Alerting.Telegram = TelegramConfig{Enabled: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("telegram without credentials should fail validation")
	}
}
