package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAlertsAggregatorFormatsAlerts(t *testing.T) {
	t.Parallel()
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotUA = r.URL.Path, r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"title":"Current watches for TXZ192","features":[
			{"properties":{"headline":"Heat Advisory","severity":"Moderate"}},
			{"properties":{"headline":"Flood Watch","severity":"Severe"}}]}`)
	}))
	defer srv.Close()

	a := NewAlertsAggregator(srv.Client(), "wx-bot (ops@example.com)").WithBaseURL(srv.URL)
	got, err := a.Fetch(context.Background(), "txz192")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if gotPath != "/alerts/active/zone/TXZ192" || gotUA != "wx-bot (ops@example.com)" {
		t.Fatalf("unexpected request path=%q ua=%q", gotPath, gotUA)
	}
	want := "```Current watches for TXZ192\n\n- Flood Watch (Severe)\n- Heat Advisory (Moderate)\n\n" +
		"Read more here: https://alerts.weather.gov/cap/wwaatmget.php?x=TXZ192&y=1```"
	if got != want {
		t.Fatalf("Fetch = %q, want %q", got, want)
	}
}

func TestAlertsAggregatorNoAlerts(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"title":"none","features":[]}`)
	}))
	defer srv.Close()

	got, err := NewAlertsAggregator(srv.Client(), "").WithBaseURL(srv.URL).Fetch(context.Background(), "TXZ192")
	if err != nil || got != noActiveAlerts {
		t.Fatalf("Fetch = %q, %v", got, err)
	}
}

func TestAlertsAggregatorErrors(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "zone not found", http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewAlertsAggregator(srv.Client(), "").WithBaseURL(srv.URL)
	if _, err := a.Fetch(context.Background(), "XXZ000"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := a.Fetch(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty zone")
	}
}

func TestUVForecastAggregator(t *testing.T) {
	t.Parallel()
	var token, query string
	mux := http.NewServeMux()
	mux.HandleFunc("/current", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("query")
		fmt.Fprint(w, `{"location":{"name":"Austin","region":"Texas","lat":"30.267","lon":"-97.743"}}`)
	})
	mux.HandleFunc("/api/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("x-access-token")
		fmt.Fprint(w, `{"result":[
			{"uv":0.5,"uv_time":"2026-05-01T13:00:00.000Z"},
			{"uv":7.25,"uv_time":"2026-05-01T18:00:00.000Z"}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewUVForecastAggregator(srv.Client(), "", "ws-key", "uv-key", time.UTC).WithBaseURLs(srv.URL, srv.URL)
	got, err := a.Fetch(context.Background(), "78701")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if query != "78701" || token != "uv-key" {
		t.Fatalf("unexpected request query=%q token=%q", query, token)
	}
	want := "```\nUV Forecast => Austin, Texas (lat: 30.27, lon: -97.74)\n\n" +
		"Forecast for May 01, 2026\n\n01:00 PM: 0.50\n06:00 PM: 7.25\n\n```"
	if got != want {
		t.Fatalf("Fetch = %q, want %q", got, want)
	}
}

func TestUVForecastAggregatorErrors(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/current", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":false,"error":{"info":"invalid access key"}}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewUVForecastAggregator(srv.Client(), "", "bad", "uv", time.UTC).WithBaseURLs(srv.URL, srv.URL)
	if _, err := a.Fetch(context.Background(), "78701"); err == nil || !strings.Contains(err.Error(), "invalid access key") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if _, err := a.Fetch(context.Background(), "austin"); err == nil {
		t.Fatal("expected error for non-numeric zip")
	}
}
