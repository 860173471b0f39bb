package store

import (
	"context"
	"errors"
	"time"

	"caixa/backend/internal/domain"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidKey  = errors.New("invalid key")
	ErrInvalidUser = errors.New("invalid user")
	ErrUserExists  = errors.New("user already exists")
)

// KeyValueStore is the durable local store behind the shift snapshot, the
// starting float and the cashback ledger. Get returns ErrNotFound for a
// missing key; Remove of a missing key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// AuditRepository persists audit entries for stores that can hold them.
type AuditRepository interface {
	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
}

// UserStore persists operator accounts. Passwords are stored as given; the
// caller hashes them.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
