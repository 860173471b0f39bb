package service

import (
	"context"
	"fmt"
	"strings"

	"caixa/backend/internal/audit"
	"caixa/backend/internal/cancellation"
	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/xid"
)

// AddCancellation records a voided sale. ID, CreatedAt and Operator are
// filled in when empty.
func (s *Service) AddCancellation(ctx context.Context, c domain.Cancellation) (domain.Cancellation, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c = s.prepareCancellation(ctx, c)
	if c.ID == "" {
		c.ID = xid.New("canc")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}

	next := append(cloneCancellations(s.snap.Cancellations), c)
	if err := s.checkCancellations(c, next); err != nil {
		return domain.Cancellation{}, s.stateLocked(), err
	}

	s.snap.Cancellations = next
	s.touchLocked()
	s.logAudit(ctx, audit.ActionCreate, "cancellation", c.ID, fmt.Sprintf("sale=%s amount=%s", c.SaleNumber, c.Amount.Fixed()))
	return c, s.stateLocked(), nil
}

func (s *Service) UpdateCancellation(ctx context.Context, id string, c domain.Cancellation) (domain.Cancellation, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findCancellation(id)
	if index < 0 {
		return domain.Cancellation{}, s.stateLocked(), ErrCancellationNotFound
	}

	prev := s.snap.Cancellations[index]
	c = s.prepareCancellation(ctx, c)
	c.ID = prev.ID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = prev.CreatedAt
	}

	next := cloneCancellations(s.snap.Cancellations)
	next[index] = c
	if err := s.checkCancellations(c, next); err != nil {
		return domain.Cancellation{}, s.stateLocked(), err
	}

	s.snap.Cancellations = next
	s.touchLocked()
	s.logAudit(ctx, audit.ActionUpdate, "cancellation", c.ID, fmt.Sprintf("sale=%s amount=%s", c.SaleNumber, c.Amount.Fixed()))
	return c, s.stateLocked(), nil
}

func (s *Service) RemoveCancellation(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.findCancellation(id)
	if index < 0 {
		return s.stateLocked(), ErrCancellationNotFound
	}

	removed := s.snap.Cancellations[index]
	next := make([]domain.Cancellation, 0, len(s.snap.Cancellations)-1)
	next = append(next, s.snap.Cancellations[:index]...)
	next = append(next, s.snap.Cancellations[index+1:]...)

	s.snap.Cancellations = next
	s.touchLocked()
	s.logAudit(ctx, audit.ActionDelete, "cancellation", removed.ID, fmt.Sprintf("sale=%s", removed.SaleNumber))
	return s.stateLocked(), nil
}

// CancellationIntegrity checks the cancellations of the current shift as a
// whole.
func (s *Service) CancellationIntegrity() cancellation.IntegrityReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cancellation.VerifyIntegrityAt(s.snap.Cancellations, s.now())
}

func (s *Service) prepareCancellation(ctx context.Context, c domain.Cancellation) domain.Cancellation {
	c.ID = strings.TrimSpace(c.ID)
	c.SaleNumber = strings.TrimSpace(c.SaleNumber)
	c.ClientName = strings.TrimSpace(c.ClientName)
	c.Reason = strings.TrimSpace(c.Reason)
	c.Operator = strings.TrimSpace(c.Operator)
	c.Amount = money.NonNegative(c.Amount)
	if c.Operator == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			c.Operator = actor.Username
		}
	}
	return c
}

// checkCancellations rejects c when it is invalid on its own or when it would
// make the list inconsistent.
func (s *Service) checkCancellations(c domain.Cancellation, next []domain.Cancellation) error {
	now := s.now()
	if res := cancellation.ValidateAt(c, now); !res.IsValid {
		return fmt.Errorf("%w: %s", ErrInvalidCancellation, strings.Join(res.Errors, "; "))
	}
	if report := cancellation.VerifyIntegrityAt(next, now); !report.IsValid {
		return fmt.Errorf("%w: %s", ErrInvalidCancellation, strings.Join(report.Issues, "; "))
	}
	return nil
}

func (s *Service) findCancellation(id string) int {
	id = strings.TrimSpace(id)
	for i, c := range s.snap.Cancellations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func cloneCancellations(list []domain.Cancellation) []domain.Cancellation {
	out := make([]domain.Cancellation, len(list), len(list)+1)
	copy(out, list)
	return out
}
