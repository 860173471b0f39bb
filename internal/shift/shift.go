// Package shift implements the typed update operations of a shift's entries
// and exits.
//
// Every function takes a container by value and returns a new one. Slices
// are copied before they change, so a previously returned container is never
// modified by a later call. Monetary input is coerced to a non-negative
// amount instead of being rejected; the reconciliation rules decide later
// whether the result can be saved.
package shift

import (
	"errors"
	"strings"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/money"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownChannel  = errors.New("unknown channel")
)

// NewSnapshot returns an empty shift pre-populated with the starting float.
func NewSnapshot(startingFloat money.Amount) domain.Snapshot {
	snap := domain.Snapshot{}
	snap.Entries.StartingFloat = money.NonNegative(startingFloat)
	return Normalize(snap)
}

// Normalize replaces nil lists with empty ones and reapplies the mirrored
// totals. It is idempotent.
func Normalize(snap domain.Snapshot) domain.Snapshot {
	e := snap.Entries
	for _, ch := range domain.Channels {
		entry := e.Channel(ch)
		entry.SubEntries = nonNil(entry.SubEntries)
		e = e.WithChannel(ch, entry)
	}
	e.Checks = nonNil(e.Checks)
	e.Taxes = nonNil(e.Taxes)
	e.MiscIncome = nonNil(e.MiscIncome)
	e.FreeGifts = nonNil(e.FreeGifts)
	snap.Entries = Mirror(e)

	x := snap.Exits
	x.Withdrawals = nonNil(x.Withdrawals)
	x.Devolutions = nonNil(x.Devolutions)
	x.CourierShipments = nonNil(x.CourierShipments)
	x.FreightShipments = nonNil(x.FreightShipments)
	x.EmployeeAdvances = nonNil(x.EmployeeAdvances)
	agents := make([]domain.CommissionAgent, len(x.CommissionAgents))
	for i, agent := range x.CommissionAgents {
		agent.Clients = nonNil(agent.Clients)
		agents[i] = agent
	}
	x.CommissionAgents = agents
	snap.Exits = x

	snap.Cancellations = nonNil(snap.Cancellations)
	return snap
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func appendCopy[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

func removeAt[T any](s []T, i int) ([]T, error) {
	if i < 0 || i >= len(s) {
		return cloneList(s), ErrIndexOutOfRange
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...), nil
}

func replaceAt[T any](s []T, i int, v T) ([]T, error) {
	out := cloneList(s)
	if i < 0 || i >= len(s) {
		return out, ErrIndexOutOfRange
	}
	out[i] = v
	return out, nil
}

func cloneList[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cleanSplit(s domain.Split) domain.Split {
	s.ClientName = strings.TrimSpace(s.ClientName)
	s.Amount = money.NonNegative(s.Amount)
	if s.Installments < 0 {
		s.Installments = 0
	}
	return s
}

func cleanSplits(splits []domain.Split) []domain.Split {
	out := make([]domain.Split, len(splits))
	for i, s := range splits {
		out[i] = cleanSplit(s)
	}
	return out
}
