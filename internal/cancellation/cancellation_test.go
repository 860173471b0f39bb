package cancellation

import (
	"strings"
	"testing"
	"time"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
)

var now = time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC)

func validCancellation(id string, sale string) domain.Cancellation {
	return domain.Cancellation{
		ID:         id,
		SaleNumber: sale,
		ClientName: "Ana",
		Amount:     money.FromFloat(49.9),
		Reason:     "cliente desistiu",
		CreatedAt:  now.Add(-time.Hour),
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	res := ValidateAt(validCancellation("c1", "V-1"), now)
	if !res.IsValid || len(res.Errors) != 0 {
		t.Fatalf("expected valid record, got %+v", res)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := domain.Cancellation{SaleNumber: " ", CreatedAt: now.Add(time.Minute)}
	res := ValidateAt(c, now)
	if res.IsValid {
		t.Fatalf("expected invalid record")
	}
	if len(res.Errors) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(res.Errors), res.Errors)
	}
}

func TestVerifyIntegrityFindsDuplicates(t *testing.T) {
	list := []domain.Cancellation{
		validCancellation("c1", "V-1"),
		validCancellation("c1", "V-2"),
		validCancellation("c3", "V-1"),
	}
	report := VerifyIntegrityAt(list, now)
	if report.IsValid {
		t.Fatalf("expected duplicates to be reported")
	}
	if len(report.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", report.Issues)
	}
	if !strings.Contains(report.Issues[0], "id c1") || !strings.Contains(report.Issues[1], "venda V-1") {
		t.Fatalf("unexpected issues: %v", report.Issues)
	}
}

func TestVerifyIntegrityEmptyList(t *testing.T) {
	report := VerifyIntegrityAt(nil, now)
	if !report.IsValid || report.Issues == nil {
		t.Fatalf("expected empty list to be valid with empty issues, got %+v", report)
	}
}
