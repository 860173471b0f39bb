package service

import (
	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/shift"
)

func (s *Service) applyEntries(fn func(domain.Entries) domain.Entries) State {
	state, _ := s.mutateEntries(func(e domain.Entries) (domain.Entries, error) { return fn(e), nil })
	return state
}

// SetStartingFloat changes the float of the shift being edited. The default
// for new shifts is set with SetDefaultStartingFloat.
func (s *Service) SetStartingFloat(amount money.Amount) State {
	return s.applyEntries(func(e domain.Entries) domain.Entries { return shift.SetStartingFloat(e, amount) })
}

func (s *Service) SetDeclaredTotal(ch domain.Channel, amount money.Amount) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.SetDeclaredTotal(e, ch, amount)
	})
}

func (s *Service) AddSplit(ch domain.Channel, split domain.Split) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.AddSplit(e, ch, split)
	})
}

func (s *Service) RemoveSplit(ch domain.Channel, index int) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.RemoveSplit(e, ch, index)
	})
}

func (s *Service) UpdateSplit(ch domain.Channel, index int, split domain.Split) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.UpdateSplit(e, ch, index, split)
	})
}

func (s *Service) AddCheck(c domain.Check) State {
	return s.applyEntries(func(e domain.Entries) domain.Entries { return shift.AddCheck(e, c) })
}

func (s *Service) RemoveCheck(index int) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.RemoveCheck(e, index)
	})
}

func (s *Service) UpdateCheck(index int, c domain.Check) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.UpdateCheck(e, index, c)
	})
}

func (s *Service) AddTax(tax domain.Tax) State {
	return s.applyEntries(func(e domain.Entries) domain.Entries { return shift.AddTax(e, tax) })
}

func (s *Service) RemoveTax(index int) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.RemoveTax(e, index)
	})
}

func (s *Service) AddMiscIncome(item domain.LedgerItem) State {
	return s.applyEntries(func(e domain.Entries) domain.Entries { return shift.AddMiscIncome(e, item) })
}

func (s *Service) RemoveMiscIncome(index int) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.RemoveMiscIncome(e, index)
	})
}

func (s *Service) SetMiscIncomeTotal(amount money.Amount) State {
	return s.applyEntries(func(e domain.Entries) domain.Entries { return shift.SetMiscIncomeTotal(e, amount) })
}

func (s *Service) AddFreeGift(item domain.LedgerItem) State {
	return s.applyEntries(func(e domain.Entries) domain.Entries { return shift.AddFreeGift(e, item) })
}

func (s *Service) RemoveFreeGift(index int) (State, error) {
	return s.mutateEntries(func(e domain.Entries) (domain.Entries, error) {
		return shift.RemoveFreeGift(e, index)
	})
}

func (s *Service) SetFreeGiftsTotal(amount money.Amount) State {
	return s.applyEntries(func(e domain.Entries) domain.Entries { return shift.SetFreeGiftsTotal(e, amount) })
}
