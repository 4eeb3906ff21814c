package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"octopus-price-alerts/internal/tariff"
)

func testNotification() Notification {
	return Notification{
		Commodity: tariff.Electricity,
		Price:     decimal.RequireFromString("0.1067"),
		Target:    decimal.RequireFromString("0.11"),
		URL:       "https://octopusenergy.it/le-nostre-tariffe",
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), testNotification()); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	if received["text"] == "" {
		t.Fatalf("text 应非空")
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())

	if err := notifier.Notify(context.Background(), testNotification()); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

func TestRenderMessage(t *testing.T) {
	got := RenderMessage(testNotification())
	want := "Price Alert! Octopus current electricity price is 0.1067 €/kWh — below your target 0.1100 €/kWh.\nhttps://octopusenergy.it/le-nostre-tariffe"
	if got != want {
		t.Fatalf("unexpected message:\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderMessageGasUnit(t *testing.T) {
	note := Notification{
		Commodity: tariff.Gas,
		Price:     decimal.RequireFromString("0.82"),
		Target:    decimal.RequireFromString("0.85"),
		URL:       "https://octopusenergy.it/le-nostre-tariffe",
	}
	got := RenderMessage(note)
	if !strings.Contains(got, "0.8200 €/Smc") || !strings.Contains(got, "gas") {
		t.Fatalf("unexpected message: %q", got)
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
