package service

import (
	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/shift"
)

func (s *Service) applyExits(fn func(domain.Exits) domain.Exits) State {
	state, _ := s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return fn(x), nil })
	return state
}

func (s *Service) SetDiscounts(amount money.Amount) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.SetDiscounts(x, amount) })
}

func (s *Service) SetWithdrawalTotal(amount money.Amount) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.SetWithdrawalTotal(x, amount) })
}

func (s *Service) SetJustifications(a, b domain.Justification) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.SetJustifications(x, a, b) })
}

func (s *Service) AddExitRecord(r domain.ExitRecord) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.AddExitRecord(x, r) })
}

func (s *Service) RemoveExitRecord(index int) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.RemoveExitRecord(x, index) })
}

func (s *Service) UpdateExitRecord(index int, r domain.ExitRecord) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.UpdateExitRecord(x, index, r) })
}

func (s *Service) AddDevolution(d domain.Devolution) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.AddDevolution(x, d) })
}

func (s *Service) RemoveDevolution(index int) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.RemoveDevolution(x, index) })
}

func (s *Service) UpdateDevolution(index int, d domain.Devolution) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.UpdateDevolution(x, index, d) })
}

func (s *Service) AddCourierShipment(c domain.CourierShipment) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.AddCourierShipment(x, c) })
}

func (s *Service) RemoveCourierShipment(index int) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.RemoveCourierShipment(x, index) })
}

func (s *Service) UpdateCourierShipment(index int, c domain.CourierShipment) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.UpdateCourierShipment(x, index, c) })
}

func (s *Service) AddFreightShipment(f domain.FreightShipment) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.AddFreightShipment(x, f) })
}

func (s *Service) RemoveFreightShipment(index int) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.RemoveFreightShipment(x, index) })
}

func (s *Service) AddEmployeeAdvance(a domain.EmployeeAdvance) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.AddEmployeeAdvance(x, a) })
}

func (s *Service) RemoveEmployeeAdvance(index int) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.RemoveEmployeeAdvance(x, index) })
}

func (s *Service) SetAdvancesIncluded(included bool) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.SetAdvancesIncluded(x, included) })
}

func (s *Service) AddCommissionAgent(a domain.CommissionAgent) State {
	return s.applyExits(func(x domain.Exits) domain.Exits { return shift.AddCommissionAgent(x, a) })
}

func (s *Service) RemoveCommissionAgent(index int) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.RemoveCommissionAgent(x, index) })
}

func (s *Service) UpdateCommissionAgent(index int, a domain.CommissionAgent) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.UpdateCommissionAgent(x, index, a) })
}

func (s *Service) AddCommissionClient(agent int, client domain.Split) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) { return shift.AddCommissionClient(x, agent, client) })
}

func (s *Service) RemoveCommissionClient(agent int, index int) (State, error) {
	return s.mutateExits(func(x domain.Exits) (domain.Exits, error) {
		return shift.RemoveCommissionClient(x, agent, index)
	})
}
