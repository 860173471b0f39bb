// Package reconcile decides whether a shift balances and derives its totals.
// Nothing here mutates its input or returns an error.
package reconcile

import (
	"fmt"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
)

const (
	RuleChannelBreakdown = "channel_breakdown"
	RuleWithdrawals      = "withdrawal_justification"
	RuleNonNegative      = "non_negative"
)

func splitAmount(s domain.Split) money.Amount { return s.Amount }

// ValidateChannel reports whether a channel's breakdown matches its declared
// total. A channel with nothing declared always passes.
func ValidateChannel(entry domain.ChannelEntry) bool {
	if entry.DeclaredTotal <= 0 {
		return true
	}
	if len(entry.SubEntries) == 0 {
		return false
	}
	return money.Equals(money.Sum(entry.SubEntries, splitAmount), entry.DeclaredTotal)
}

// withdrawalSource returns the amount that justifies WithdrawalTotal. The
// itemized list is authoritative whenever it has items; the two legacy
// justification fields are only consulted for records that predate it.
func withdrawalSource(x domain.Exits) money.Amount {
	if len(x.Withdrawals) > 0 {
		return money.Sum(x.Withdrawals, func(r domain.ExitRecord) money.Amount { return r.Amount })
	}
	return money.Add(x.JustificationA.Amount, x.JustificationB.Amount)
}

// ValidateWithdrawals reports whether the scalar withdrawal total is fully
// justified.
func ValidateWithdrawals(x domain.Exits) bool {
	if x.WithdrawalTotal <= 0 {
		return true
	}
	return money.Equals(withdrawalSource(x), x.WithdrawalTotal)
}

// NonNegative reports whether every monetary field of snap is >= 0.
func NonNegative(snap domain.Snapshot) bool {
	return len(negativeFields(snap)) == 0
}

func negativeFields(snap domain.Snapshot) []string {
	var bad []string
	check := func(name string, a money.Amount) {
		if a.IsNegative() {
			bad = append(bad, name)
		}
	}

	e := snap.Entries
	check("entries.starting_float", e.StartingFloat)
	for _, ch := range domain.Channels {
		entry := e.Channel(ch)
		check(fmt.Sprintf("entries.%s.declared_total", ch), entry.DeclaredTotal)
		for i, s := range entry.SubEntries {
			check(fmt.Sprintf("entries.%s.sub_entries[%d]", ch, i), s.Amount)
		}
	}
	for i, c := range e.Checks {
		check(fmt.Sprintf("entries.checks[%d]", i), c.Amount)
	}
	for i, tax := range e.Taxes {
		check(fmt.Sprintf("entries.taxes[%d]", i), tax.Amount)
	}
	check("entries.misc_income_total", e.MiscIncomeTotal)
	for i, item := range e.MiscIncome {
		check(fmt.Sprintf("entries.misc_income[%d]", i), item.Amount)
	}
	check("entries.free_gifts_total", e.FreeGiftsTotal)
	for i, item := range e.FreeGifts {
		check(fmt.Sprintf("entries.free_gifts[%d]", i), item.Amount)
	}

	x := snap.Exits
	check("exits.discounts", x.Discounts)
	check("exits.withdrawal_total", x.WithdrawalTotal)
	check("exits.justification_a", x.JustificationA.Amount)
	check("exits.justification_b", x.JustificationB.Amount)
	for i, r := range x.Withdrawals {
		check(fmt.Sprintf("exits.withdrawals[%d]", i), r.Amount)
	}
	for i, d := range x.Devolutions {
		check(fmt.Sprintf("exits.devolutions[%d]", i), d.Amount)
	}
	for i, s := range x.CourierShipments {
		check(fmt.Sprintf("exits.courier_shipments[%d]", i), s.Amount)
	}
	for i, f := range x.FreightShipments {
		check(fmt.Sprintf("exits.freight_shipments[%d]", i), f.Amount)
	}
	for i, a := range x.EmployeeAdvances {
		check(fmt.Sprintf("exits.employee_advances[%d]", i), a.Amount)
	}
	for i, a := range x.CommissionAgents {
		check(fmt.Sprintf("exits.commission_agents[%d].total_sales", i), a.TotalSales)
		check(fmt.Sprintf("exits.commission_agents[%d].value", i), a.Value)
	}
	for i, c := range snap.Cancellations {
		check(fmt.Sprintf("cancelamentos[%d]", i), c.Amount)
	}
	return bad
}

// CanSave is the conjunction of every reconciliation rule.
func CanSave(snap domain.Snapshot) bool {
	for _, ch := range domain.SplittableChannels {
		if !ValidateChannel(snap.Entries.Channel(ch)) {
			return false
		}
	}
	return ValidateWithdrawals(snap.Exits) && NonNegative(snap)
}

// Problems lists every failing rule with a message for the operator. It is
// empty exactly when CanSave is true.
func Problems(snap domain.Snapshot) []domain.Problem {
	problems := make([]domain.Problem, 0)
	for _, ch := range domain.SplittableChannels {
		entry := snap.Entries.Channel(ch)
		if ValidateChannel(entry) {
			continue
		}
		summed := money.Sum(entry.SubEntries, splitAmount)
		msg := fmt.Sprintf("%s: a soma por cliente (%s) difere do total informado (%s)", ch.Label(), summed, entry.DeclaredTotal)
		if len(entry.SubEntries) == 0 {
			msg = fmt.Sprintf("%s: informe a divisão por cliente do total de %s", ch.Label(), entry.DeclaredTotal)
		}
		problems = append(problems, domain.Problem{
			Rule:     RuleChannelBreakdown,
			Channel:  ch,
			Declared: entry.DeclaredTotal,
			Summed:   summed,
			Message:  msg,
		})
	}

	if !ValidateWithdrawals(snap.Exits) {
		summed := withdrawalSource(snap.Exits)
		problems = append(problems, domain.Problem{
			Rule:     RuleWithdrawals,
			Declared: snap.Exits.WithdrawalTotal,
			Summed:   summed,
			Message:  fmt.Sprintf("Saídas: justificativas somam %s, mas o total de saídas é %s", summed, snap.Exits.WithdrawalTotal),
		})
	}

	for _, field := range negativeFields(snap) {
		problems = append(problems, domain.Problem{
			Rule:    RuleNonNegative,
			Message: fmt.Sprintf("Valor negativo em %s", field),
		})
	}
	return problems
}
