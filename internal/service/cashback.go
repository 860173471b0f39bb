package service

import (
	"context"
	"fmt"

	"caixa/backend/internal/audit"
	"caixa/backend/internal/cashback"
	"caixa/backend/internal/money"
)

// Cashback balances live outside the shift: nothing here marks the shift
// dirty and Clear never touches them.

func (s *Service) GrantCashback(ctx context.Context, taxID string, name string, amount money.Amount) (cashback.Customer, error) {
	customer, err := s.cashback.Grant(ctx, taxID, name, amount)
	if err != nil {
		return cashback.Customer{}, err
	}
	s.logAudit(ctx, audit.ActionUpdate, "cashback", customer.TaxID, fmt.Sprintf("grant %s", amount.Fixed()))
	return customer, nil
}

func (s *Service) RedeemCashback(ctx context.Context, taxID string, amount money.Amount) (bool, error) {
	ok, err := s.cashback.Redeem(ctx, taxID, amount)
	if err != nil || !ok {
		return ok, err
	}
	id, _ := cashback.NormalizeTaxID(taxID)
	s.logAudit(ctx, audit.ActionUpdate, "cashback", id, fmt.Sprintf("redeem %s", amount.Fixed()))
	return true, nil
}

func (s *Service) CashbackBalance(ctx context.Context, taxID string) (money.Amount, error) {
	return s.cashback.AvailableBalance(ctx, taxID)
}

func (s *Service) CashbackCustomer(ctx context.Context, taxID string) (cashback.Customer, error) {
	return s.cashback.Get(ctx, taxID)
}

func (s *Service) ListCashbackCustomers(ctx context.Context) ([]cashback.Customer, error) {
	return s.cashback.List(ctx)
}
