package shift

import (
	"strings"

	"github.com/shopspring/decimal"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
)

func SetDiscounts(x domain.Exits, amount money.Amount) domain.Exits {
	x.Discounts = money.NonNegative(amount)
	return x
}

// SetWithdrawalTotal sets the legacy scalar "saída" total that the itemized
// withdrawals or the two justifications must account for.
func SetWithdrawalTotal(x domain.Exits, amount money.Amount) domain.Exits {
	x.WithdrawalTotal = money.NonNegative(amount)
	return x
}

func SetJustifications(x domain.Exits, a, b domain.Justification) domain.Exits {
	a.Description = strings.TrimSpace(a.Description)
	a.Amount = money.NonNegative(a.Amount)
	b.Description = strings.TrimSpace(b.Description)
	b.Amount = money.NonNegative(b.Amount)
	x.JustificationA = a
	x.JustificationB = b
	return x
}

func cleanExitRecord(r domain.ExitRecord) domain.ExitRecord {
	r.Description = strings.TrimSpace(r.Description)
	r.Amount = money.NonNegative(r.Amount)
	return r
}

func AddExitRecord(x domain.Exits, r domain.ExitRecord) domain.Exits {
	x.Withdrawals = appendCopy(x.Withdrawals, cleanExitRecord(r))
	return x
}

func RemoveExitRecord(x domain.Exits, index int) (domain.Exits, error) {
	records, err := removeAt(x.Withdrawals, index)
	x.Withdrawals = records
	return x, err
}

func UpdateExitRecord(x domain.Exits, index int, r domain.ExitRecord) (domain.Exits, error) {
	records, err := replaceAt(x.Withdrawals, index, cleanExitRecord(r))
	x.Withdrawals = records
	return x, err
}

func cleanDevolution(d domain.Devolution) domain.Devolution {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.TaxID = strings.TrimSpace(d.TaxID)
	d.Amount = money.NonNegative(d.Amount)
	return d
}

func AddDevolution(x domain.Exits, d domain.Devolution) domain.Exits {
	x.Devolutions = appendCopy(x.Devolutions, cleanDevolution(d))
	return x
}

func RemoveDevolution(x domain.Exits, index int) (domain.Exits, error) {
	items, err := removeAt(x.Devolutions, index)
	x.Devolutions = items
	return x, err
}

func UpdateDevolution(x domain.Exits, index int, d domain.Devolution) (domain.Exits, error) {
	items, err := replaceAt(x.Devolutions, index, cleanDevolution(d))
	x.Devolutions = items
	return x, err
}

func cleanCourier(s domain.CourierShipment) domain.CourierShipment {
	switch domain.CourierService(strings.ToUpper(strings.TrimSpace(string(s.ServiceType)))) {
	case domain.CourierPAC:
		s.ServiceType = domain.CourierPAC
	case domain.CourierSEDEX:
		s.ServiceType = domain.CourierSEDEX
	default:
		s.ServiceType = domain.CourierNone
	}
	s.State = strings.ToUpper(strings.TrimSpace(s.State))
	s.ClientName = strings.TrimSpace(s.ClientName)
	s.Amount = money.NonNegative(s.Amount)
	return s
}

func AddCourierShipment(x domain.Exits, s domain.CourierShipment) domain.Exits {
	x.CourierShipments = appendCopy(x.CourierShipments, cleanCourier(s))
	return x
}

func RemoveCourierShipment(x domain.Exits, index int) (domain.Exits, error) {
	items, err := removeAt(x.CourierShipments, index)
	x.CourierShipments = items
	return x, err
}

func UpdateCourierShipment(x domain.Exits, index int, s domain.CourierShipment) (domain.Exits, error) {
	items, err := replaceAt(x.CourierShipments, index, cleanCourier(s))
	x.CourierShipments = items
	return x, err
}

func AddFreightShipment(x domain.Exits, f domain.FreightShipment) domain.Exits {
	f.ClientName = strings.TrimSpace(f.ClientName)
	f.State = strings.ToUpper(strings.TrimSpace(f.State))
	f.InvoiceNumber = strings.TrimSpace(f.InvoiceNumber)
	f.Amount = money.NonNegative(f.Amount)
	f.DeclaredGoodsValue = money.NonNegative(f.DeclaredGoodsValue)
	if f.Weight < 0 {
		f.Weight = 0
	}
	if f.Quantity < 0 {
		f.Quantity = 0
	}
	x.FreightShipments = appendCopy(x.FreightShipments, f)
	return x
}

func RemoveFreightShipment(x domain.Exits, index int) (domain.Exits, error) {
	items, err := removeAt(x.FreightShipments, index)
	x.FreightShipments = items
	return x, err
}

func AddEmployeeAdvance(x domain.Exits, a domain.EmployeeAdvance) domain.Exits {
	a.EmployeeName = strings.TrimSpace(a.EmployeeName)
	a.Amount = money.NonNegative(a.Amount)
	x.EmployeeAdvances = appendCopy(x.EmployeeAdvances, a)
	return x
}

func RemoveEmployeeAdvance(x domain.Exits, index int) (domain.Exits, error) {
	items, err := removeAt(x.EmployeeAdvances, index)
	x.EmployeeAdvances = items
	return x, err
}

func SetAdvancesIncluded(x domain.Exits, included bool) domain.Exits {
	x.AdvancesIncludedInShiftTotal = included
	return x
}

// cleanAgent derives Value from TotalSales and Percentage when the operator
// left it blank.
func cleanAgent(a domain.CommissionAgent) domain.CommissionAgent {
	a.Name = strings.TrimSpace(a.Name)
	if a.Percentage.IsNegative() {
		a.Percentage = decimal.Zero
	}
	a.TotalSales = money.NonNegative(a.TotalSales)
	a.Value = money.NonNegative(a.Value)
	if a.Value.IsZero() && a.Percentage.IsPositive() {
		a.Value = money.Percent(a.TotalSales, a.Percentage)
	}
	a.Clients = cleanSplits(a.Clients)
	return a
}

func AddCommissionAgent(x domain.Exits, a domain.CommissionAgent) domain.Exits {
	x.CommissionAgents = appendCopy(x.CommissionAgents, cleanAgent(a))
	return x
}

func RemoveCommissionAgent(x domain.Exits, index int) (domain.Exits, error) {
	items, err := removeAt(x.CommissionAgents, index)
	x.CommissionAgents = items
	return x, err
}

func UpdateCommissionAgent(x domain.Exits, index int, a domain.CommissionAgent) (domain.Exits, error) {
	items, err := replaceAt(x.CommissionAgents, index, cleanAgent(a))
	x.CommissionAgents = items
	return x, err
}

func AddCommissionClient(x domain.Exits, agent int, client domain.Split) (domain.Exits, error) {
	if agent < 0 || agent >= len(x.CommissionAgents) {
		x.CommissionAgents = cloneList(x.CommissionAgents)
		return x, ErrIndexOutOfRange
	}
	a := x.CommissionAgents[agent]
	a.Clients = appendCopy(a.Clients, cleanSplit(client))
	agents, err := replaceAt(x.CommissionAgents, agent, a)
	x.CommissionAgents = agents
	return x, err
}

func RemoveCommissionClient(x domain.Exits, agent int, index int) (domain.Exits, error) {
	if agent < 0 || agent >= len(x.CommissionAgents) {
		x.CommissionAgents = cloneList(x.CommissionAgents)
		return x, ErrIndexOutOfRange
	}
	a := x.CommissionAgents[agent]
	clients, err := removeAt(a.Clients, index)
	if err != nil {
		x.CommissionAgents = cloneList(x.CommissionAgents)
		return x, err
	}
	a.Clients = clients
	agents, err := replaceAt(x.CommissionAgents, agent, a)
	x.CommissionAgents = agents
	return x, err
}
