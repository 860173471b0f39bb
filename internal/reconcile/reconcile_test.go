package reconcile

import (
	"testing"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/shift"
)

func brl(f float64) money.Amount { return money.FromFloat(f) }

func TestValidateChannelSplitMatchesTotal(t *testing.T) {
	entry := domain.ChannelEntry{
		DeclaredTotal: brl(150),
		SubEntries:    []domain.Split{{ClientName: "Ana", Amount: brl(50)}, {ClientName: "Bia", Amount: brl(100)}},
	}
	if !ValidateChannel(entry) {
		t.Fatalf("expected 50+100 to reconcile with 150")
	}

	entry.SubEntries[1].Amount = brl(99.99)
	if ValidateChannel(entry) {
		t.Fatalf("expected 50+99.99 not to reconcile with 150")
	}
}

func TestValidateChannelEmptyBreakdown(t *testing.T) {
	if ValidateChannel(domain.ChannelEntry{DeclaredTotal: brl(200), SubEntries: []domain.Split{}}) {
		t.Fatalf("expected empty breakdown to fail for declared 200")
	}
}

func TestValidateChannelZeroTotalPassesThrough(t *testing.T) {
	if !ValidateChannel(domain.ChannelEntry{}) {
		t.Fatalf("expected zero total without splits to pass")
	}
	if !ValidateChannel(domain.ChannelEntry{SubEntries: []domain.Split{{Amount: brl(10)}}}) {
		t.Fatalf("expected zero total with stray splits to pass")
	}
}

func TestValidateChannelFloatingPointSafe(t *testing.T) {
	entry := domain.ChannelEntry{
		DeclaredTotal: brl(0.3),
		SubEntries:    []domain.Split{{Amount: brl(0.1)}, {Amount: brl(0.2)}},
	}
	if !ValidateChannel(entry) {
		t.Fatalf("expected 0.1+0.2 to reconcile with 0.3")
	}
}

func TestValidateWithdrawals(t *testing.T) {
	x := domain.Exits{}
	if !ValidateWithdrawals(x) {
		t.Fatalf("expected zero withdrawal total to pass")
	}

	x.WithdrawalTotal = brl(80)
	if ValidateWithdrawals(x) {
		t.Fatalf("expected unjustified total to fail")
	}

	x.JustificationA = domain.Justification{Description: "fornecedor", Amount: brl(50)}
	x.JustificationB = domain.Justification{Description: "vale", Amount: brl(30)}
	if !ValidateWithdrawals(x) {
		t.Fatalf("expected legacy justifications to cover total")
	}

	x.Withdrawals = []domain.ExitRecord{{Description: "sangria", Amount: brl(70)}}
	if ValidateWithdrawals(x) {
		t.Fatalf("expected itemized list to take precedence over matching legacy fields")
	}

	x.Withdrawals = append(x.Withdrawals, domain.ExitRecord{Description: "café", Amount: brl(10)})
	if !ValidateWithdrawals(x) {
		t.Fatalf("expected itemized list summing to total to pass")
	}
}

func TestCanSave(t *testing.T) {
	snap := shift.NewSnapshot(brl(100))
	if !CanSave(snap) {
		t.Fatalf("expected fresh snapshot to be saveable, problems=%v", Problems(snap))
	}

	snap.Entries.PixAccount.DeclaredTotal = brl(200)
	if CanSave(snap) {
		t.Fatalf("expected pix account without breakdown to block save")
	}
	problems := Problems(snap)
	if len(problems) != 1 || problems[0].Channel != domain.ChannelPixAccount {
		t.Fatalf("expected one pix_account problem, got %+v", problems)
	}

	snap.Entries.PixAccount.SubEntries = []domain.Split{{ClientName: "Ana", Amount: brl(200)}}
	if !CanSave(snap) {
		t.Fatalf("expected reconciled snapshot to be saveable, problems=%v", Problems(snap))
	}

	snap.Exits.Discounts = money.FromCents(-1)
	if CanSave(snap) {
		t.Fatalf("expected negative amount to block save")
	}
	if got := Problems(snap); len(got) != 1 || got[0].Rule != RuleNonNegative {
		t.Fatalf("expected one non-negative problem, got %+v", got)
	}
}

func TestCanSaveChecksEverySplittableChannel(t *testing.T) {
	for _, ch := range domain.SplittableChannels {
		snap := shift.NewSnapshot(money.Zero)
		snap.Entries = snap.Entries.WithChannel(ch, domain.ChannelEntry{DeclaredTotal: brl(10), SubEntries: []domain.Split{}})
		if CanSave(snap) {
			t.Fatalf("expected %s without breakdown to block save", ch)
		}
	}

	snap := shift.NewSnapshot(money.Zero)
	snap.Entries.Card.DeclaredTotal = brl(10)
	snap.Entries.Cash.DeclaredTotal = brl(10)
	snap.Entries.PixTerminal.DeclaredTotal = brl(10)
	if !CanSave(snap) {
		t.Fatalf("expected non-splittable channels not to need a breakdown")
	}
}

func TestCalculateFinalBalanceScenario(t *testing.T) {
	snap := shift.NewSnapshot(brl(400))
	snap.Entries.Card.DeclaredTotal = brl(120.5)
	snap.Entries.PixTerminal.DeclaredTotal = brl(80)
	snap.Entries = shift.AddCheck(snap.Entries, domain.Check{Bank: "001", Amount: brl(50)})
	snap.Exits = shift.AddExitRecord(snap.Exits, domain.ExitRecord{Description: "sangria", Amount: brl(30), IncludedInShiftTotal: true})

	got := Calculate(snap)
	if got.FinalBalance.Fixed() != "620.50" {
		t.Fatalf("expected final balance 620.50, got %s", got.FinalBalance.Fixed())
	}
	if got.GrossInbound.Fixed() != "650.50" {
		t.Fatalf("expected gross inbound 650.50, got %s", got.GrossInbound.Fixed())
	}
	if got.IncludedWithdrawals.Fixed() != "30.00" {
		t.Fatalf("expected included withdrawals 30.00, got %s", got.IncludedWithdrawals.Fixed())
	}
}

func TestCalculateIncludedFlags(t *testing.T) {
	snap := shift.NewSnapshot(money.Zero)
	snap.Exits = shift.AddExitRecord(snap.Exits, domain.ExitRecord{Amount: brl(30), IncludedInShiftTotal: false})
	snap.Exits = shift.AddDevolution(snap.Exits, domain.Devolution{Amount: brl(40), IncludedInShiftTotal: true})
	snap.Exits = shift.AddDevolution(snap.Exits, domain.Devolution{Amount: brl(5), IncludedInShiftTotal: false})
	snap.Exits = shift.AddCourierShipment(snap.Exits, domain.CourierShipment{Amount: brl(22.9), IncludedInShiftTotal: true})
	snap.Exits = shift.AddEmployeeAdvance(snap.Exits, domain.EmployeeAdvance{Amount: brl(100)})
	snap.Exits = shift.AddFreightShipment(snap.Exits, domain.FreightShipment{Amount: brl(300)})

	got := Calculate(snap)
	if !got.IncludedWithdrawals.IsZero() || !got.IncludedAdvances.IsZero() {
		t.Fatalf("expected excluded items to be ignored, got %+v", got)
	}
	if got.FinalBalance.Fixed() != "62.90" {
		t.Fatalf("expected 62.90, got %s", got.FinalBalance.Fixed())
	}
	if got.FreightTotal.Fixed() != "300.00" {
		t.Fatalf("expected informational freight total 300.00, got %s", got.FreightTotal.Fixed())
	}

	snap.Exits = shift.SetAdvancesIncluded(snap.Exits, true)
	got = Calculate(snap)
	if got.FinalBalance.Fixed() != "162.90" {
		t.Fatalf("expected advances to count when flag is set, got %s", got.FinalBalance.Fixed())
	}
}

func TestCalculateLedgersAndTaxes(t *testing.T) {
	snap := shift.NewSnapshot(money.Zero)
	snap.Entries = shift.SetFreeGiftsTotal(snap.Entries, brl(7))
	snap.Entries = shift.AddMiscIncome(snap.Entries, domain.LedgerItem{Amount: brl(0.1)})
	snap.Entries = shift.AddMiscIncome(snap.Entries, domain.LedgerItem{Amount: brl(0.2)})
	snap.Entries = shift.AddTax(snap.Entries, domain.Tax{Label: "taxa", Amount: brl(2.5)})

	got := Calculate(snap)
	if got.GrossInbound.Fixed() != "9.80" {
		t.Fatalf("expected 7 + 0.30 + 2.50 = 9.80, got %s", got.GrossInbound.Fixed())
	}
}

func TestCalculateHandlesNilLists(t *testing.T) {
	got := Calculate(domain.Snapshot{})
	if !got.FinalBalance.IsZero() {
		t.Fatalf("expected zero balance for empty snapshot, got %s", got.FinalBalance.Fixed())
	}
}
