package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserver(t *testing.T) {
	t.Run("counts events", func(t *testing.T) {
		o := NewObserver()
		o.OnRequest("u", 1)
		o.OnRetry("u", 1, errors.New("x"))
		o.OnRequest("u", 2)
		o.OnPage("u", 50, 50, 120)
		o.OnPage("u", 20, 70, 120)

		if got := testutil.ToFloat64(o.requests); got != 2 {
			t.Errorf("expected 2 requests, got %v", got)
		}
		if o.Requests() != 2 {
			t.Errorf("expected request count 2, got %d", o.Requests())
		}
		if got := testutil.ToFloat64(o.retries); got != 1 {
			t.Errorf("expected 1 retry, got %v", got)
		}
		if got := testutil.ToFloat64(o.pages); got != 2 {
			t.Errorf("expected 2 pages, got %v", got)
		}
		if got := testutil.ToFloat64(o.items); got != 70 {
			t.Errorf("expected 70 items, got %v", got)
		}
	})

	t.Run("RecordRun", func(t *testing.T) {
		o := NewObserver()
		o.RecordRun("succeeded", 1500*time.Millisecond)

		if got := testutil.ToFloat64(o.runs.WithLabelValues("succeeded")); got != 1 {
			t.Errorf("expected 1 run, got %v", got)
		}
		if got := testutil.ToFloat64(o.duration); got != 1.5 {
			t.Errorf("expected 1.5s, got %v", got)
		}
	})

	t.Run("registries are independent", func(t *testing.T) {
		a, b := NewObserver(), NewObserver()
		a.OnRequest("u", 1)
		if got := testutil.ToFloat64(b.requests); got != 0 {
			t.Errorf("expected isolated registry, got %v", got)
		}
	})

	t.Run("WriteFile", func(t *testing.T) {
		o := NewObserver()
		o.OnRequest("u", 1)

		path := filepath.Join(t.TempDir(), "spotx.prom")
		if err := o.WriteFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read metrics file: %v", err)
		}
		if !strings.Contains(string(data), "spotx_requests_total 1") {
			t.Errorf("expected request counter in output, got %s", data)
		}
	})

	t.Run("WriteFile to missing directory", func(t *testing.T) {
		o := NewObserver()
		if err := o.WriteFile(filepath.Join(t.TempDir(), "missing", "x.prom")); err == nil {
			t.Error("expected error")
		}
	})
}
