// Package app wires the configured store into a ready shift service. The
// server and the caixactl tool share it so both see the same data.
package app

import (
	"context"
	"fmt"
	"log"

	"caixa/backend/internal/audit"
	"caixa/backend/internal/cashback"
	"caixa/backend/internal/config"
	"caixa/backend/internal/metrics"
	"caixa/backend/internal/persistence"
	"caixa/backend/internal/service"
	"caixa/backend/internal/store"
	"caixa/backend/internal/store/memory"
	pgstore "caixa/backend/internal/store/postgres"
	"caixa/backend/internal/store/rediskv"
)

type Backend struct {
	Kind      string
	KV        store.KeyValueStore
	Users     store.UserStore
	AuditLogs store.AuditRepository
	Metrics   *metrics.Metrics
	Service   *service.Service

	closers []func() error
}

// Open selects the store from cfg: postgres when DATABASE_URL is set, then
// redis when REDIS_ADDR answers, then an in-memory store. A set but
// unreachable DATABASE_URL is an error rather than a silent fallback.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	b := &Backend{Metrics: metrics.New()}

	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set: %w", err)
		}
		if err := pg.SeedUsers(ctx, memory.SeedUsers()); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("seed users: %w", err)
		}
		b.Kind = "postgres"
		b.KV, b.Users, b.AuditLogs = pg, pg, pg
		b.closers = append(b.closers, pg.Close)
	case cfg.RedisAddr != "" && b.openRedis(ctx, cfg):
	default:
		mem := memory.NewSeeded()
		b.Kind = "memory"
		b.KV, b.Users, b.AuditLogs = mem, mem, mem
	}

	var auditLogger audit.Logger = audit.Std{}
	if b.AuditLogs != nil {
		auditLogger = audit.NewRepository(b.AuditLogs)
	}

	gateway := persistence.New(b.KV, persistence.Config{
		SnapshotKey:          cfg.SnapshotKey,
		StartingFloatKey:     cfg.StartingFloatKey,
		DefaultStartingFloat: cfg.DefaultStartingFloat,
	}, b.Metrics)
	ledger := cashback.New(b.KV, cashback.Config{KeyPrefix: cfg.CashbackKeyPrefix}, b.Metrics)

	b.Service = service.New(service.Deps{
		Gateway:   gateway,
		Cashback:  ledger,
		Audit:     auditLogger,
		AuditLogs: b.AuditLogs,
		Metrics:   b.Metrics,
	})
	return b, nil
}

// openRedis keeps accounts in memory; redis only holds the key-value data.
func (b *Backend) openRedis(ctx context.Context, cfg config.Config) bool {
	rdb := rediskv.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(ctx); err != nil {
		log.Printf("[app] WARN: redis unavailable (%v), using in-memory store", err)
		_ = rdb.Close()
		return false
	}
	b.Kind = "redis"
	b.KV = rdb
	b.Users = memory.NewSeeded()
	b.closers = append(b.closers, rdb.Close)
	return true
}

func (b *Backend) Close() {
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			log.Printf("[app] WARN: close error: %v", err)
		}
	}
}
