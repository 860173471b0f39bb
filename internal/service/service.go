// Package service owns the live shift of this terminal: the snapshot being
// edited, its dirty flag and its derived totals. All mutations go through one
// mutex so callers always observe the most recently committed state.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"caixa/backend/internal/audit"
	"caixa/backend/internal/cashback"
	"caixa/backend/internal/domain"
	"caixa/backend/internal/metrics"
	"caixa/backend/internal/money"
	"caixa/backend/internal/persistence"
	"caixa/backend/internal/reconcile"
	"caixa/backend/internal/shift"
	"caixa/backend/internal/store"
)

var (
	ErrNotReconciled        = errors.New("shift is not reconciled")
	ErrForbidden            = errors.New("admin role required")
	ErrAuditUnavailable     = errors.New("audit log is not kept by this store")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
	ErrInvalidCancellation  = errors.New("invalid cancellation")
	ErrCancellationNotFound = errors.New("cancellation not found")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// State is what every shift operation returns: the committed snapshot and
// everything derived from it.
type State struct {
	Snapshot domain.Snapshot  `json:"snapshot"`
	Totals   domain.Totals    `json:"totals"`
	CanSave  bool             `json:"can_save"`
	Problems []domain.Problem `json:"problems"`
	Dirty    bool             `json:"dirty"`
	Revision uint64           `json:"revision"`
}

type Deps struct {
	Gateway   *persistence.Gateway
	Cashback  *cashback.Ledger
	Audit     audit.Logger
	AuditLogs store.AuditRepository
	Metrics   *metrics.Metrics
}

type Service struct {
	mu        sync.Mutex
	gateway   *persistence.Gateway
	cashback  *cashback.Ledger
	audit     audit.Logger
	auditLogs store.AuditRepository
	metrics   *metrics.Metrics
	now       func() time.Time

	snap     domain.Snapshot
	dirty    bool
	revision uint64

	totals    domain.Totals
	totalsRev uint64
	hasTotals bool
}

// New returns a service holding an empty shift. Call Load to pick up the
// saved one.
func New(deps Deps) *Service {
	logger := deps.Audit
	if logger == nil {
		logger = audit.Noop{}
	}
	return &Service{
		gateway:   deps.Gateway,
		cashback:  deps.Cashback,
		audit:     logger,
		auditLogs: deps.AuditLogs,
		metrics:   deps.Metrics,
		now:       func() time.Time { return time.Now().UTC() },
		snap:      shift.NewSnapshot(money.Zero),
	}
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Service) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

// Save persists the shift when every reconciliation rule holds.
func (s *Service) Save(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !reconcile.CanSave(s.snap) {
		s.metrics.ShiftSave("not_reconciled")
		return s.stateLocked(), ErrNotReconciled
	}
	if err := s.gateway.Save(ctx, s.snap); err != nil {
		s.metrics.ShiftSave("error")
		return s.stateLocked(), err
	}

	s.dirty = false
	s.metrics.ShiftSave("saved")
	totals := s.totalsLocked()
	s.logAudit(ctx, audit.ActionUpdate, "shift", "current", fmt.Sprintf("saved final_balance=%s", totals.FinalBalance.Fixed()))
	return s.stateLocked(), nil
}

// Load replaces the in-memory shift with the saved one, or with a fresh shift
// when nothing usable is saved. The boolean reports whether a saved shift was
// found. On a store failure the in-memory shift is kept.
func (s *Service) Load(ctx context.Context) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, found, err := s.gateway.Load(ctx)
	if err != nil {
		return s.stateLocked(), false, err
	}
	s.replaceLocked(snap)
	return s.stateLocked(), found, nil
}

// Clear removes the saved shift and starts a fresh one from the configured
// starting float.
func (s *Service) Clear(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.gateway.Clear(ctx)
	if err != nil {
		return s.stateLocked(), err
	}
	s.replaceLocked(snap)
	s.logAudit(ctx, audit.ActionDelete, "shift", "current", "shift cleared")
	return s.stateLocked(), nil
}

func (s *Service) SetObservations(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Observations = strings.TrimSpace(text)
	s.touchLocked()
	return s.stateLocked()
}

// DefaultStartingFloat is the float new shifts start from.
func (s *Service) DefaultStartingFloat(ctx context.Context) money.Amount {
	return s.gateway.StartingFloat(ctx)
}

func (s *Service) SetDefaultStartingFloat(ctx context.Context, amount money.Amount) (money.Amount, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleAdmin {
		return money.Zero, ErrForbidden
	}
	amount = money.NonNegative(amount)
	if err := s.gateway.SetStartingFloat(ctx, amount); err != nil {
		return money.Zero, err
	}
	s.logAudit(ctx, audit.ActionUpdate, "starting_float", "default", amount.Fixed())
	return amount, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	if s.auditLogs == nil {
		return nil, ErrAuditUnavailable
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = s.now().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.auditLogs.ListAuditLogs(ctx, from, to, limit)
}

func (s *Service) mutateEntries(fn func(domain.Entries) (domain.Entries, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.snap.Entries)
	if err != nil {
		return s.stateLocked(), err
	}
	s.snap.Entries = next
	s.touchLocked()
	return s.stateLocked(), nil
}

func (s *Service) mutateExits(fn func(domain.Exits) (domain.Exits, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.snap.Exits)
	if err != nil {
		return s.stateLocked(), err
	}
	s.snap.Exits = next
	s.touchLocked()
	return s.stateLocked(), nil
}

func (s *Service) touchLocked() {
	s.dirty = true
	s.revision++
}

func (s *Service) replaceLocked(snap domain.Snapshot) {
	s.snap = shift.Normalize(snap)
	s.dirty = false
	s.revision++
}

func (s *Service) totalsLocked() domain.Totals {
	if !s.hasTotals || s.totalsRev != s.revision {
		s.totals = reconcile.Calculate(s.snap)
		s.totalsRev = s.revision
		s.hasTotals = true
	}
	return s.totals
}

func (s *Service) stateLocked() State {
	return State{
		Snapshot: s.snap,
		Totals:   s.totalsLocked(),
		CanSave:  reconcile.CanSave(s.snap),
		Problems: reconcile.Problems(s.snap),
		Dirty:    s.dirty,
		Revision: s.revision,
	}
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = audit.SystemActor
	}
	s.audit.Log(ctx, action, entityType, entityID, detail, actor)
}
