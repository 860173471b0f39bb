package reconcile

import (
	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
)

// Calculate derives the shift totals:
//
//	final = inbound + included devolutions + included courier
//	      + advances (when the shift flag is set) - included withdrawals
//
// Declared channel totals are authoritative; sub-entries never replace them.
func Calculate(snap domain.Snapshot) domain.Totals {
	e := snap.Entries
	x := snap.Exits

	inbound := []money.Amount{e.StartingFloat}
	for _, ch := range domain.Channels {
		inbound = append(inbound, e.Channel(ch).DeclaredTotal)
	}
	inbound = append(inbound,
		ledgerTotal(e.MiscIncome, e.MiscIncomeTotal),
		ledgerTotal(e.FreeGifts, e.FreeGiftsTotal),
		money.Sum(e.Checks, func(c domain.Check) money.Amount { return c.Amount }),
		money.Sum(e.Taxes, func(t domain.Tax) money.Amount { return t.Amount }),
	)

	t := domain.Totals{
		GrossInbound: money.Add(inbound...),
		IncludedDevolutions: money.Sum(x.Devolutions, func(d domain.Devolution) money.Amount {
			return included(d.Amount, d.IncludedInShiftTotal)
		}),
		IncludedCourier: money.Sum(x.CourierShipments, func(s domain.CourierShipment) money.Amount {
			return included(s.Amount, s.IncludedInShiftTotal)
		}),
		IncludedWithdrawals: money.Sum(x.Withdrawals, func(r domain.ExitRecord) money.Amount {
			return included(r.Amount, r.IncludedInShiftTotal)
		}),
		Discounts:       x.Discounts,
		CommissionTotal: money.Sum(x.CommissionAgents, func(a domain.CommissionAgent) money.Amount { return a.Value }),
		FreightTotal:    money.Sum(x.FreightShipments, func(f domain.FreightShipment) money.Amount { return f.Amount }),
	}
	if x.AdvancesIncludedInShiftTotal {
		t.IncludedAdvances = money.Sum(x.EmployeeAdvances, func(a domain.EmployeeAdvance) money.Amount { return a.Amount })
	}

	t.FinalBalance = money.Subtract(
		money.Add(t.GrossInbound, t.IncludedDevolutions, t.IncludedCourier, t.IncludedAdvances),
		t.IncludedWithdrawals,
	)
	return t
}

func ledgerTotal(items []domain.LedgerItem, scalar money.Amount) money.Amount {
	if len(items) > 0 {
		return money.Sum(items, ledgerAmount)
	}
	return scalar
}

func ledgerAmount(item domain.LedgerItem) money.Amount { return item.Amount }

func included(a money.Amount, flag bool) money.Amount {
	if flag {
		return a
	}
	return money.Zero
}
