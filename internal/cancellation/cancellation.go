// Package cancellation validates the voided sales recorded during a shift.
package cancellation

import (
	"fmt"
	"strings"
	"time"

	"caixa/backend/internal/domain"
)

type Result struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

type IntegrityReport struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

// Validate checks a single cancellation as of now.
func Validate(c domain.Cancellation) Result {
	return ValidateAt(c, time.Now())
}

func ValidateAt(c domain.Cancellation, now time.Time) Result {
	errs := []string{}
	if strings.TrimSpace(c.SaleNumber) == "" {
		errs = append(errs, "número da venda é obrigatório")
	}
	if strings.TrimSpace(c.ClientName) == "" {
		errs = append(errs, "nome do cliente é obrigatório")
	}
	if strings.TrimSpace(c.Reason) == "" {
		errs = append(errs, "motivo do cancelamento é obrigatório")
	}
	if !c.Amount.IsPositive() {
		errs = append(errs, "valor deve ser maior que zero")
	}
	if !c.CreatedAt.IsZero() && c.CreatedAt.After(now) {
		errs = append(errs, "data do cancelamento não pode estar no futuro")
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// VerifyIntegrity reports duplicated ids or sale numbers and invalid records.
func VerifyIntegrity(list []domain.Cancellation) IntegrityReport {
	return VerifyIntegrityAt(list, time.Now())
}

func VerifyIntegrityAt(list []domain.Cancellation, now time.Time) IntegrityReport {
	issues := []string{}
	ids := make(map[string]int, len(list))
	sales := make(map[string]int, len(list))

	for i, c := range list {
		if c.ID != "" {
			if first, ok := ids[c.ID]; ok {
				issues = append(issues, fmt.Sprintf("registro %d repete o id %s do registro %d", i+1, c.ID, first+1))
			} else {
				ids[c.ID] = i
			}
		}

		sale := strings.TrimSpace(c.SaleNumber)
		if sale != "" {
			if first, ok := sales[sale]; ok {
				issues = append(issues, fmt.Sprintf("registro %d repete a venda %s do registro %d", i+1, sale, first+1))
			} else {
				sales[sale] = i
			}
		}

		if res := ValidateAt(c, now); !res.IsValid {
			issues = append(issues, fmt.Sprintf("registro %d: %s", i+1, strings.Join(res.Errors, "; ")))
		}
	}
	return IntegrityReport{IsValid: len(issues) == 0, Issues: issues}
}
