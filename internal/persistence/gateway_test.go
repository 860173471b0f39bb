package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/shift"
	"caixa/backend/internal/store"
	"caixa/backend/internal/store/memory"
)

type countingFallback struct{ n int }

func (c *countingFallback) SnapshotLoadFallback() { c.n++ }

func newTestGateway() (*Gateway, *memory.Store, *countingFallback) {
	kv := memory.New()
	fb := &countingFallback{}
	cfg := Config{
		SnapshotKey:          "test:shift",
		StartingFloatKey:     "test:float",
		DefaultStartingFloat: money.FromFloat(150),
	}
	return New(kv, cfg, fb), kv, fb
}

func sampleSnapshot() domain.Snapshot {
	due := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)
	return domain.Snapshot{
		Entries: domain.Entries{
			StartingFloat: money.FromFloat(400),
			Card:          domain.ChannelEntry{DeclaredTotal: money.FromFloat(120.5)},
			CardLink: domain.ChannelEntry{
				DeclaredTotal: money.FromFloat(150),
				SubEntries: []domain.Split{
					{ClientName: "Ana", Amount: money.FromFloat(50), Installments: 2},
					{ClientName: "Bia", Amount: money.FromFloat(100)},
				},
			},
			Checks:     []domain.Check{{Bank: "001", Branch: "1234", CheckNumber: "99", ClientName: "Caio", Amount: money.FromFloat(50), DueDate: &due}},
			MiscIncome: []domain.LedgerItem{{Description: "frete", Amount: money.FromFloat(12.3)}},
		},
		Exits: domain.Exits{
			Withdrawals: []domain.ExitRecord{{Description: "sangria", Amount: money.FromFloat(30), IncludedInShiftTotal: true}},
			CommissionAgents: []domain.CommissionAgent{{
				Name:       "Rafa",
				Percentage: decimal.NewFromFloat(2.5),
				TotalSales: money.FromFloat(1000),
				Value:      money.FromFloat(25),
				Clients:    []domain.Split{{ClientName: "Ana", Amount: money.FromFloat(1000)}},
			}},
			AdvancesIncludedInShiftTotal: true,
		},
		Cancellations: []domain.Cancellation{{
			ID:         "canc-1",
			SaleNumber: "V-100",
			ClientName: "Ana",
			Amount:     money.FromFloat(19.9),
			Reason:     "duplicada",
			CreatedAt:  time.Date(2026, 10, 18, 14, 30, 0, 0, time.UTC),
		}},
		Observations: "fechamento sem sobras",
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g, _, _ := newTestGateway()
	ctx := context.Background()
	snap := sampleSnapshot()

	if err := g.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, found, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatalf("expected saved snapshot to be found")
	}

	want := shift.Normalize(snap)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.Entries.Boleto.SubEntries == nil || got.Exits.Devolutions == nil {
		t.Fatalf("expected absent lists to load as empty lists")
	}
	if got.Entries.MiscIncomeTotal.Fixed() != "12.30" {
		t.Fatalf("expected mirrored misc income total, got %s", got.Entries.MiscIncomeTotal.Fixed())
	}
}

func TestSaveIsFullReplace(t *testing.T) {
	g, _, _ := newTestGateway()
	ctx := context.Background()

	if err := g.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := g.Save(ctx, domain.Snapshot{Observations: "segunda"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Cancellations) != 0 || len(got.Exits.Withdrawals) != 0 || got.Observations != "segunda" {
		t.Fatalf("expected second save to replace the first, got %+v", got)
	}
}

func TestLoadMissingReturnsDefaultsWithStartingFloat(t *testing.T) {
	g, _, fb := newTestGateway()
	got, found, err := g.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatalf("expected nothing to be found")
	}
	if got.Entries.StartingFloat.Fixed() != "150.00" {
		t.Fatalf("expected default starting float 150.00, got %s", got.Entries.StartingFloat.Fixed())
	}
	if fb.n != 0 {
		t.Fatalf("missing snapshot is not a fallback, got %d", fb.n)
	}
}

func TestLoadMalformedFallsBackToDefaults(t *testing.T) {
	g, kv, fb := newTestGateway()
	ctx := context.Background()
	if err := kv.Set(ctx, "test:shift", []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, found, err := g.Load(ctx)
	if err != nil {
		t.Fatalf("expected malformed content not to surface as an error, got %v", err)
	}
	if found {
		t.Fatalf("expected malformed content to be treated as absent")
	}
	if got.Entries.Checks == nil || got.Entries.StartingFloat.Fixed() != "150.00" {
		t.Fatalf("expected default snapshot, got %+v", got.Entries)
	}
	if fb.n != 1 {
		t.Fatalf("expected one recorded fallback, got %d", fb.n)
	}
}

func TestLoadKeepsGoodSectionsWhenOneIsMalformed(t *testing.T) {
	g, kv, fb := newTestGateway()
	ctx := context.Background()
	raw := `{"version":1,"entries":"oops","exits":{"discounts":5},"observations":"ok"}`
	if err := kv.Set(ctx, "test:shift", []byte(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, found, err := g.Load(ctx)
	if err != nil || !found {
		t.Fatalf("expected load to succeed, found=%v err=%v", found, err)
	}
	if got.Exits.Discounts.Fixed() != "5.00" || got.Observations != "ok" {
		t.Fatalf("expected good sections to survive, got %+v", got.Exits)
	}
	if got.Entries.Taxes == nil {
		t.Fatalf("expected dropped section to default to empty lists")
	}
	if fb.n != 1 {
		t.Fatalf("expected the dropped section to be counted once, got %d", fb.n)
	}
}

func TestLoadDropsHalfDecodedSectionWhole(t *testing.T) {
	g, kv, fb := newTestGateway()
	ctx := context.Background()
	raw := `{"version":1,"exits":{"withdrawal_total":30,"withdrawals":"bad","discounts":7},"observations":"ok"}`
	if err := kv.Set(ctx, "test:shift", []byte(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, found, err := g.Load(ctx)
	if err != nil || !found {
		t.Fatalf("expected load to succeed, found=%v err=%v", found, err)
	}
	if !got.Exits.WithdrawalTotal.IsZero() || !got.Exits.Discounts.IsZero() {
		t.Fatalf("expected no field of the malformed exits to survive, got total=%s discounts=%s",
			got.Exits.WithdrawalTotal.Fixed(), got.Exits.Discounts.Fixed())
	}
	if got.Exits.Withdrawals == nil || len(got.Exits.Withdrawals) != 0 {
		t.Fatalf("expected empty withdrawals list, got %+v", got.Exits.Withdrawals)
	}
	if got.Observations != "ok" {
		t.Fatalf("expected observations to survive, got %q", got.Observations)
	}
	if fb.n != 1 {
		t.Fatalf("expected one recorded fallback, got %d", fb.n)
	}
}

func TestLoadUpgradesLegacyRecord(t *testing.T) {
	g, kv, _ := newTestGateway()
	ctx := context.Background()
	raw := `{
		"entries": {"cash": {"declared_total": 400}, "boleto": {"declared_total": "80,00"}},
		"exits": {
			"withdrawal_total": 30,
			"justification_a": {"description": "fornecedor", "amount": 30},
			"puxador": {"name": "Rafa", "percentage": 3, "total_sales": 500, "value": 15}
		}
	}`
	if err := kv.Set(ctx, "test:shift", []byte(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, found, err := g.Load(ctx)
	if err != nil || !found {
		t.Fatalf("expected legacy record to load, found=%v err=%v", found, err)
	}
	if len(got.Exits.CommissionAgents) != 1 || got.Exits.CommissionAgents[0].Name != "Rafa" {
		t.Fatalf("expected legacy puxador to become one commission agent, got %+v", got.Exits.CommissionAgents)
	}
	if got.Exits.CommissionAgents[0].Clients == nil {
		t.Fatalf("expected migrated agent to have an empty client list")
	}
	if got.Entries.Boleto.DeclaredTotal.Fixed() != "80.00" {
		t.Fatalf("expected quoted legacy amount to parse, got %s", got.Entries.Boleto.DeclaredTotal.Fixed())
	}
	if got.Cancellations == nil || got.Exits.EmployeeAdvances == nil {
		t.Fatalf("expected lists absent from legacy record to be empty")
	}
	if got.Exits.AdvancesIncludedInShiftTotal {
		t.Fatalf("expected missing flag to default to false")
	}
}

func TestClearRemovesSnapshot(t *testing.T) {
	g, kv, _ := newTestGateway()
	ctx := context.Background()
	if err := g.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err := g.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if snap.Entries.StartingFloat.Fixed() != "150.00" || len(snap.Cancellations) != 0 {
		t.Fatalf("expected default snapshot after clear, got %+v", snap)
	}
	if _, err := kv.Get(ctx, "test:shift"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected snapshot key to be removed, got %v", err)
	}
}

func TestStartingFloat(t *testing.T) {
	g, kv, fb := newTestGateway()
	ctx := context.Background()

	if got := g.StartingFloat(ctx); got.Fixed() != "150.00" {
		t.Fatalf("expected configured default, got %s", got.Fixed())
	}
	if err := g.SetStartingFloat(ctx, money.FromFloat(275.4)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := g.StartingFloat(ctx); got.Fixed() != "275.40" {
		t.Fatalf("expected stored float, got %s", got.Fixed())
	}

	if err := kv.Set(ctx, "test:float", []byte("garbage")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := g.StartingFloat(ctx); got.Fixed() != "150.00" {
		t.Fatalf("expected default for unreadable float, got %s", got.Fixed())
	}
	if fb.n != 1 {
		t.Fatalf("expected fallback to be recorded, got %d", fb.n)
	}
}

func TestNewFillsMissingKeys(t *testing.T) {
	g := New(memory.New(), Config{}, nil)
	cfg := g.Config()
	if cfg.SnapshotKey != "caixa:shift" || cfg.StartingFloatKey != "caixa:starting_float" {
		t.Fatalf("expected default keys, got %+v", cfg)
	}
}
