// Package audit records who changed what during a shift. Sinks never fail
// the operation they describe: write errors are logged and dropped.
package audit

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/store"
	"caixa/backend/internal/xid"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionView   Action = "VIEW"
)

type Logger interface {
	Log(ctx context.Context, action Action, entityType string, entityID string, detail string, actor domain.Actor)
}

// SystemActor is used when no authenticated operator is attached to a change.
var SystemActor = domain.Actor{Username: "system", Role: "system"}

func newEntry(action Action, entityType string, entityID string, detail string, actor domain.Actor) domain.AuditLog {
	if actor.Username == "" {
		actor = SystemActor
	}
	if actor.Terminal != "" {
		detail = strings.TrimSpace("[" + actor.Terminal + "] " + detail)
	}
	return domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        string(action),
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
}

type Noop struct{}

func (Noop) Log(context.Context, Action, string, string, string, domain.Actor) {}

// Std writes audit entries to the process log.
type Std struct{}

func (Std) Log(_ context.Context, action Action, entityType string, entityID string, detail string, actor domain.Actor) {
	entry := newEntry(action, entityType, entityID, detail, actor)
	log.Printf("[audit] INFO: %s %s/%s by %s(%s): %s", entry.Action, entry.EntityType, entry.EntityID, entry.ActorUsername, entry.ActorRole, entry.Detail)
}

// Repository writes audit entries to a store that can hold them.
type Repository struct {
	repo store.AuditRepository
}

func NewRepository(repo store.AuditRepository) *Repository {
	return &Repository{repo: repo}
}

func (r *Repository) Log(ctx context.Context, action Action, entityType string, entityID string, detail string, actor domain.Actor) {
	entry := newEntry(action, entityType, entityID, detail, actor)
	if err := r.repo.CreateAuditLog(ctx, entry); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", entry.Action, entityType, entityID, err)
	}
}

// Recorder keeps entries in memory. Tests use it to assert on what was logged.
type Recorder struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (r *Recorder) Log(_ context.Context, action Action, entityType string, entityID string, detail string, actor domain.Actor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, newEntry(action, entityType, entityID, detail, actor))
}

func (r *Recorder) Entries() []domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out
}
