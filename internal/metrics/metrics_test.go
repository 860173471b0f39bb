package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCountersAreExported(t *testing.T) {
	m := New()
	m.ShiftSave("saved")
	m.ShiftSave("not_reconciled")
	m.ShiftSave("saved")
	m.SnapshotLoadFallback()
	m.CashbackRedemption(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`caixa_shift_saves_total{result="saved"} 2`,
		`caixa_shift_saves_total{result="not_reconciled"} 1`,
		`caixa_snapshot_load_fallbacks_total 1`,
		`caixa_cashback_redemptions_total{result="refused"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected %q in output, got:\n%s", want, body)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ShiftSave("saved")
	m.SnapshotLoadFallback()
	m.CashbackRedemption(true)
	if m.Registry() != nil {
		t.Fatalf("expected nil registry")
	}
}
