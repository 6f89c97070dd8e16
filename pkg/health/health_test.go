package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dd0wney/cluso-memstore/pkg/logging"
	"github.com/dd0wney/cluso-memstore/pkg/record"
	"github.com/dd0wney/cluso-memstore/pkg/store"
)

func TestChecker_WorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no checks", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for i, s := range tt.statuses {
				c.RegisterCheck(string(rune('a'+i)), func() Check { return Check{Status: s} })
			}
			if got := c.Check().Status; got != tt.want {
				t.Errorf("Status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestChecker_NamesChecks(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("store", func() Check { return Check{Status: StatusHealthy} })

	resp := c.Check()
	if resp.Checks["store"].Name != "store" {
		t.Errorf("check name = %q, want store", resp.Checks["store"].Name)
	}
	if resp.Checks["store"].LastChecked.IsZero() {
		t.Error("LastChecked not set")
	}
}

func TestProgressCheck(t *testing.T) {
	var (
		done bool
		err  error
	)
	check := ProgressCheck(func() (bool, error) { return done, err })

	if got := check().Status; got != StatusDegraded {
		t.Errorf("running: %s", got)
	}
	done = true
	if got := check().Status; got != StatusHealthy {
		t.Errorf("done: %s", got)
	}
	err = errors.New("index mismatch")
	if got := check(); got.Status != StatusUnhealthy || got.Message != "index mismatch" {
		t.Errorf("failed: %+v", got)
	}
}

func TestStoreCheck(t *testing.T) {
	ms := store.NewMainStore(store.WithLogger(logging.NewNopLogger()))
	if err := ms.Store(record.NewMap(map[string]any{"id": 1})); err != nil {
		t.Fatal(err)
	}

	check := StoreCheck(ms)()
	if check.Status != StatusHealthy {
		t.Errorf("Status = %s", check.Status)
	}
	if check.Details["types"] != 1 {
		t.Errorf("types = %v", check.Details["types"])
	}
	records := check.Details["records"].(map[string]any)
	if records["Map"] != 1 {
		t.Errorf("records = %v", records)
	}
}

func TestHandlers(t *testing.T) {
	var done bool
	c := NewChecker()
	c.RegisterCheck("store", func() Check { return Check{Status: StatusHealthy} })
	c.RegisterReadinessCheck("workload", ProgressCheck(func() (bool, error) { return done, nil }))

	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health code = %d", rec.Code)
	}
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("health status = %s", resp.Status)
	}

	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready code while running = %d", rec.Code)
	}

	done = true
	rec = httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ready code when done = %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}
