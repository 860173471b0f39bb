// Package persistence saves and restores the shift snapshot and the starting
// cash float through a store.KeyValueStore.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
	"caixa/backend/internal/shift"
	"caixa/backend/internal/store"
)

type Config struct {
	SnapshotKey          string
	StartingFloatKey     string
	DefaultStartingFloat money.Amount
}

func DefaultConfig() Config {
	return Config{
		SnapshotKey:      "caixa:shift",
		StartingFloatKey: "caixa:starting_float",
	}
}

// FallbackRecorder is told whenever a stored value had to be replaced by
// defaults.
type FallbackRecorder interface {
	SnapshotLoadFallback()
}

type Gateway struct {
	kv       store.KeyValueStore
	cfg      Config
	fallback FallbackRecorder
}

func New(kv store.KeyValueStore, cfg Config, fallback FallbackRecorder) *Gateway {
	defaults := DefaultConfig()
	if cfg.SnapshotKey == "" {
		cfg.SnapshotKey = defaults.SnapshotKey
	}
	if cfg.StartingFloatKey == "" {
		cfg.StartingFloatKey = defaults.StartingFloatKey
	}
	cfg.DefaultStartingFloat = money.NonNegative(cfg.DefaultStartingFloat)
	return &Gateway{kv: kv, cfg: cfg, fallback: fallback}
}

func (g *Gateway) Config() Config {
	return g.cfg
}

// Save replaces any previously saved snapshot with snap.
func (g *Gateway) Save(ctx context.Context, snap domain.Snapshot) error {
	payload, err := json.Marshal(toRecord(snap))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := g.kv.Set(ctx, g.cfg.SnapshotKey, payload); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the saved snapshot and true, or a fresh default snapshot and
// false when nothing usable is stored. Unreadable content is logged and
// replaced by defaults; only a failing store is returned as an error.
func (g *Gateway) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	payload, err := g.kv.Get(ctx, g.cfg.SnapshotKey)
	if errors.Is(err, store.ErrNotFound) {
		return g.defaultSnapshot(ctx), false, nil
	}
	if err != nil {
		return g.defaultSnapshot(ctx), false, fmt.Errorf("load snapshot: %w", err)
	}

	snap, dropped, err := decode(payload)
	if err != nil {
		log.Printf("[persistence] WARN: saved shift under %q is not valid JSON, starting from defaults: %v", g.cfg.SnapshotKey, err)
		g.recordFallback()
		return g.defaultSnapshot(ctx), false, nil
	}
	for i := 0; i < dropped; i++ {
		g.recordFallback()
	}
	return snap, true, nil
}

// Clear removes the saved snapshot and returns the default one.
func (g *Gateway) Clear(ctx context.Context) (domain.Snapshot, error) {
	if err := g.kv.Remove(ctx, g.cfg.SnapshotKey); err != nil {
		return domain.Snapshot{}, fmt.Errorf("clear snapshot: %w", err)
	}
	return g.defaultSnapshot(ctx), nil
}

// StartingFloat returns the configured "fundo de caixa" for new shifts.
func (g *Gateway) StartingFloat(ctx context.Context) money.Amount {
	payload, err := g.kv.Get(ctx, g.cfg.StartingFloatKey)
	if errors.Is(err, store.ErrNotFound) {
		return g.cfg.DefaultStartingFloat
	}
	if err != nil {
		log.Printf("[persistence] WARN: failed to read starting float: %v", err)
		return g.cfg.DefaultStartingFloat
	}

	var amount money.Amount
	if err := json.Unmarshal(payload, &amount); err != nil {
		log.Printf("[persistence] WARN: starting float under %q is unreadable: %v", g.cfg.StartingFloatKey, err)
		g.recordFallback()
		return g.cfg.DefaultStartingFloat
	}
	return money.NonNegative(amount)
}

func (g *Gateway) SetStartingFloat(ctx context.Context, amount money.Amount) error {
	payload, err := json.Marshal(money.NonNegative(amount))
	if err != nil {
		return err
	}
	if err := g.kv.Set(ctx, g.cfg.StartingFloatKey, payload); err != nil {
		return fmt.Errorf("save starting float: %w", err)
	}
	return nil
}

func (g *Gateway) defaultSnapshot(ctx context.Context) domain.Snapshot {
	return shift.NewSnapshot(g.StartingFloat(ctx))
}

func (g *Gateway) recordFallback() {
	if g.fallback != nil {
		g.fallback.SnapshotLoadFallback()
	}
}
