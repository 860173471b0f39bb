package money

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddIsExact(t *testing.T) {
	got := Add(FromFloat(0.1), FromFloat(0.2))
	if !Equals(got, FromFloat(0.3)) {
		t.Fatalf("expected 0.30, got %s", got.Fixed())
	}
	if got.Cents() != 30 {
		t.Fatalf("expected 30 cents, got %d", got.Cents())
	}
}

func TestAddManyValues(t *testing.T) {
	got := Add(FromFloat(400), FromFloat(120.5), FromFloat(80), FromFloat(50))
	if got.Fixed() != "650.50" {
		t.Fatalf("expected 650.50, got %s", got.Fixed())
	}
	if Add() != Zero {
		t.Fatalf("expected empty add to be zero")
	}
}

func TestSubtract(t *testing.T) {
	got := Subtract(FromFloat(650.5), FromFloat(30))
	if got.Fixed() != "620.50" {
		t.Fatalf("expected 620.50, got %s", got.Fixed())
	}
}

func TestRoundingTiesAwayFromZero(t *testing.T) {
	cases := map[string]int64{
		"0.005":  1,
		"0.004":  0,
		"1.235":  124,
		"-0.005": -1,
		"2.675":  268,
	}
	for raw, want := range cases {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", raw, err)
		}
		if got := FromDecimal(d).Cents(); got != want {
			t.Fatalf("%s: expected %d cents, got %d", raw, want, got)
		}
	}
}

func TestFromFloatCoercesNonFinite(t *testing.T) {
	if FromFloat(math.NaN()) != Zero {
		t.Fatalf("expected NaN to coerce to zero")
	}
	if FromFloat(math.Inf(1)) != Zero {
		t.Fatalf("expected +Inf to coerce to zero")
	}
}

func TestParse(t *testing.T) {
	cases := map[string]string{
		"120.50":    "120.50",
		"120,50":    "120.50",
		"1.234,56":  "1234.56",
		"R$ 10,00":  "10.00",
		"abc":       "0.00",
		"":          "0.00",
		"  7  ":     "7.00",
		"0.1":       "0.10",
		"12,345":    "12.35",
		"R$1.000,5": "1000.50",
		"1.234":     "1234.00",
		"1.234.567": "1234567.00",
		"0.100":     "0.10",
		"12.3456":   "12.35",
	}
	for raw, want := range cases {
		if got := Parse(raw).Fixed(); got != want {
			t.Fatalf("Parse(%q): expected %s, got %s", raw, want, got)
		}
	}
}

func TestNonNegative(t *testing.T) {
	if NonNegative(FromCents(-10)) != Zero {
		t.Fatalf("expected negative to coerce to zero")
	}
	if NonNegative(FromCents(10)) != FromCents(10) {
		t.Fatalf("expected positive to pass through")
	}
}

func TestPercent(t *testing.T) {
	got := Percent(FromFloat(1234.56), decimal.NewFromFloat(2.5))
	if got.Fixed() != "30.86" {
		t.Fatalf("expected 30.86, got %s", got.Fixed())
	}
}

func TestSum(t *testing.T) {
	type row struct{ v Amount }
	rows := []row{{FromFloat(0.1)}, {FromFloat(0.2)}, {FromFloat(0.7)}}
	got := Sum(rows, func(r row) Amount { return r.v })
	if got.Fixed() != "1.00" {
		t.Fatalf("expected 1.00, got %s", got.Fixed())
	}
}

func TestJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		A Amount `json:"a"`
	}{A: FromFloat(120.5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"a":120.50}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var decoded struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
		D Amount `json:"d"`
		E Amount `json:"e"`
	}
	raw := `{"a":120.5,"b":"33,10","c":null,"d":"not a number","e":true}`
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.A.Fixed() != "120.50" || decoded.B.Fixed() != "33.10" {
		t.Fatalf("unexpected decoded amounts a=%s b=%s", decoded.A.Fixed(), decoded.B.Fixed())
	}
	if decoded.C != Zero || decoded.D != Zero || decoded.E != Zero {
		t.Fatalf("expected invalid values to decode to zero")
	}
}

func TestOutOfRangeBecomesZero(t *testing.T) {
	var decoded struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":1e30,"b":"-1e30"}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.A != Zero || decoded.B != Zero {
		t.Fatalf("expected out-of-range amounts to decode to zero, got a=%d b=%d", decoded.A, decoded.B)
	}
	for _, raw := range []string{"1e20", "92233720368547758.08", "-1e25"} {
		if got := Parse(raw); got != Zero {
			t.Fatalf("Parse(%q): expected zero, got %d", raw, got)
		}
	}
	if got := Parse("92233720368547758.07"); got != Amount(math.MaxInt64) {
		t.Fatalf("expected the largest representable amount to survive, got %d", got)
	}
}

func TestAddSaturates(t *testing.T) {
	if got := Add(Amount(math.MaxInt64), FromCents(1)); got != Amount(math.MaxInt64) {
		t.Fatalf("expected Add to saturate at max, got %d", got)
	}
	if got := Subtract(Amount(math.MinInt64), FromCents(1)); got != Amount(math.MinInt64) {
		t.Fatalf("expected Subtract to saturate at min, got %d", got)
	}
	rows := []Amount{Amount(math.MaxInt64), Amount(math.MaxInt64)}
	if got := Sum(rows, func(a Amount) Amount { return a }); got != Amount(math.MaxInt64) {
		t.Fatalf("expected Sum to saturate, got %d", got)
	}
}

func TestString(t *testing.T) {
	got := FromFloat(10.5).String()
	if !strings.Contains(got, "10,50") || !strings.Contains(got, "R$") {
		t.Fatalf("expected BRL rendering, got %q", got)
	}
}
