package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFetchPageSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html>0.1067 €/kWh</html>"))
	}))
	defer srv.Close()

	p := NewPage(PageOptions{Timeout: time.Second, UserAgent: "test-agent"}, noopLogger())
	body, err := p.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if body != "<html>0.1067 €/kWh</html>" {
		t.Fatalf("unexpected body %q", body)
	}
	if gotUA != "test-agent" {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
}

func TestFetchPageBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewPage(PageOptions{Timeout: time.Second}, noopLogger())
	if _, err := p.FetchPage(context.Background(), srv.URL); !errors.Is(err, ErrPageBlocked) {
		t.Fatalf("expected ErrPageBlocked, got %v", err)
	}
}

func TestFetchPageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPage(PageOptions{Timeout: time.Second}, noopLogger())
	if _, err := p.FetchPage(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestFetchPageMissingURL(t *testing.T) {
	p := NewPage(PageOptions{}, noopLogger())
	if _, err := p.FetchPage(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty url")
	}
}
