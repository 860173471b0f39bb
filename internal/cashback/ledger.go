// Package cashback keeps per-customer cashback balances in their own keyspace
// of a store.KeyValueStore. Records outlive any single shift and are never
// removed by a shift reset.
package cashback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"caixa/backend/internal/money"
	"caixa/backend/internal/store"
)

var (
	ErrInvalidAmount = errors.New("cashback amount must be positive")
	ErrInvalidTaxID  = errors.New("tax id must contain digits")
	ErrNotFound      = errors.New("cashback customer not found")
)

const DefaultKeyPrefix = "cashback:"

type EventKind string

const (
	EventGrant  EventKind = "grant"
	EventRedeem EventKind = "redeem"
)

type Event struct {
	Kind   EventKind    `json:"kind"`
	Amount money.Amount `json:"amount"`
	At     time.Time    `json:"at"`
}

// Customer is one cashback account. Redeemed never exceeds Granted.
type Customer struct {
	Name        string       `json:"name"`
	TaxID       string       `json:"tax_id"`
	Granted     money.Amount `json:"granted"`
	GrantedDate time.Time    `json:"granted_date"`
	Redeemed    money.Amount `json:"redeemed"`
	History     []Event      `json:"history"`
}

func (c Customer) Available() money.Amount {
	return money.Subtract(c.Granted, c.Redeemed)
}

// RedemptionRecorder observes every redemption attempt that reached the
// balance check.
type RedemptionRecorder interface {
	CashbackRedemption(accepted bool)
}

type Config struct {
	KeyPrefix string
}

type Ledger struct {
	mu       sync.Mutex
	kv       store.KeyValueStore
	prefix   string
	recorder RedemptionRecorder
	now      func() time.Time
}

func New(kv store.KeyValueStore, cfg Config, recorder RedemptionRecorder) *Ledger {
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Ledger{
		kv:       kv,
		prefix:   prefix,
		recorder: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeTaxID keeps only the digits of a CPF/CNPJ as typed by the operator.
func NormalizeTaxID(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "", ErrInvalidTaxID
	}
	return b.String(), nil
}

// Grant credits amount to the customer, creating the record on first use.
func (l *Ledger) Grant(ctx context.Context, taxID string, name string, amount money.Amount) (Customer, error) {
	id, err := NormalizeTaxID(taxID)
	if err != nil {
		return Customer{}, err
	}
	if !amount.IsPositive() {
		return Customer{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	customer, found, err := l.read(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if !found {
		customer = Customer{TaxID: id, History: []Event{}}
	}
	if name = strings.TrimSpace(name); name != "" {
		customer.Name = name
	}

	at := l.now()
	customer.Granted = money.Add(customer.Granted, amount)
	customer.GrantedDate = at
	customer.History = append(customer.History, Event{Kind: EventGrant, Amount: amount, At: at})

	if err := l.write(ctx, customer); err != nil {
		return Customer{}, err
	}
	if !found {
		if err := l.addToIndex(ctx, id); err != nil {
			log.Printf("[cashback] WARN: failed to index customer %s: %v", id, err)
		}
	}
	return customer, nil
}

// AvailableBalance is granted minus redeemed. Unknown customers have zero.
func (l *Ledger) AvailableBalance(ctx context.Context, taxID string) (money.Amount, error) {
	id, err := NormalizeTaxID(taxID)
	if err != nil {
		return money.Zero, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	customer, _, err := l.read(ctx, id)
	if err != nil {
		return money.Zero, err
	}
	return customer.Available(), nil
}

// Redeem debits amount when it does not exceed the available balance. A
// refused redemption returns false and leaves the record untouched.
func (l *Ledger) Redeem(ctx context.Context, taxID string, amount money.Amount) (bool, error) {
	id, err := NormalizeTaxID(taxID)
	if err != nil {
		return false, err
	}
	if !amount.IsPositive() {
		return false, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	customer, found, err := l.read(ctx, id)
	if err != nil {
		return false, err
	}
	if !found || amount > customer.Available() {
		l.recordRedemption(false)
		return false, nil
	}

	customer.Redeemed = money.Add(customer.Redeemed, amount)
	customer.History = append(customer.History, Event{Kind: EventRedeem, Amount: amount, At: l.now()})
	if err := l.write(ctx, customer); err != nil {
		return false, err
	}
	l.recordRedemption(true)
	return true, nil
}

func (l *Ledger) Get(ctx context.Context, taxID string) (Customer, error) {
	id, err := NormalizeTaxID(taxID)
	if err != nil {
		return Customer{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	customer, found, err := l.read(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	if !found {
		return Customer{}, ErrNotFound
	}
	return customer, nil
}

// List returns every known customer ordered by tax id.
func (l *Ledger) List(ctx context.Context) ([]Customer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids, err := l.readIndex(ctx)
	if err != nil {
		return nil, err
	}

	customers := make([]Customer, 0, len(ids))
	for _, id := range ids {
		customer, found, err := l.read(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			customers = append(customers, customer)
		}
	}
	return customers, nil
}

func (l *Ledger) customerKey(id string) string {
	return l.prefix + id
}

func (l *Ledger) indexKey() string {
	return l.prefix + "index"
}

func (l *Ledger) read(ctx context.Context, id string) (Customer, bool, error) {
	payload, err := l.kv.Get(ctx, l.customerKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return Customer{TaxID: id, History: []Event{}}, false, nil
	}
	if err != nil {
		return Customer{}, false, fmt.Errorf("read cashback customer: %w", err)
	}

	var customer Customer
	if err := json.Unmarshal(payload, &customer); err != nil {
		return Customer{}, false, fmt.Errorf("decode cashback customer %s: %w", id, err)
	}
	customer.TaxID = id
	if customer.History == nil {
		customer.History = []Event{}
	}
	return customer, true, nil
}

func (l *Ledger) write(ctx context.Context, customer Customer) error {
	payload, err := json.Marshal(customer)
	if err != nil {
		return fmt.Errorf("encode cashback customer: %w", err)
	}
	if err := l.kv.Set(ctx, l.customerKey(customer.TaxID), payload); err != nil {
		return fmt.Errorf("save cashback customer: %w", err)
	}
	return nil
}

func (l *Ledger) readIndex(ctx context.Context) ([]string, error) {
	payload, err := l.kv.Get(ctx, l.indexKey())
	if errors.Is(err, store.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cashback index: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(payload, &ids); err != nil {
		log.Printf("[cashback] WARN: index under %q is unreadable, treating as empty: %v", l.indexKey(), err)
		return []string{}, nil
	}
	return ids, nil
}

func (l *Ledger) addToIndex(ctx context.Context, id string) error {
	ids, err := l.readIndex(ctx)
	if err != nil {
		return err
	}
	pos := sort.SearchStrings(ids, id)
	if pos < len(ids) && ids[pos] == id {
		return nil
	}
	ids = append(ids, "")
	copy(ids[pos+1:], ids[pos:])
	ids[pos] = id

	payload, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return l.kv.Set(ctx, l.indexKey(), payload)
}

func (l *Ledger) recordRedemption(accepted bool) {
	if l.recorder != nil {
		l.recorder.CashbackRedemption(accepted)
	}
}
