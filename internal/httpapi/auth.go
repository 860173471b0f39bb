package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"caixa/backend/internal/domain"
	"caixa/backend/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrManagerPINRequired = errors.New("manager PIN required")

	errOtherTerminal = errors.New("token was issued for another terminal")
)

// AuthOptions configures an AuthManager. Terminal names the till whose shift
// the issued tokens may touch.
type AuthOptions struct {
	Secret     string
	TokenTTL   time.Duration
	ManagerPIN string
	Terminal   string
}

// AuthManager signs tokens bound to one terminal and decides which actors may
// discard that terminal's shift.
type AuthManager struct {
	secret   []byte
	ttl      time.Duration
	terminal string
	pinHash  []byte
	users    store.UserStore

	mu       sync.RWMutex
	accounts map[string]domain.UserAccount
}

type shiftClaims struct {
	jwtlib.RegisteredClaims
	Role     string `json:"role"`
	Terminal string `json:"term"`
}

func NewAuthManager(opts AuthOptions, users store.UserStore) *AuthManager {
	if opts.Secret == "" {
		opts.Secret = "dev-change-me"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 8 * time.Hour
	}
	if opts.Terminal == "" {
		opts.Terminal = "caixa"
	}

	a := &AuthManager{
		secret:   []byte(opts.Secret),
		ttl:      opts.TokenTTL,
		terminal: opts.Terminal,
		users:    users,
		accounts: make(map[string]domain.UserAccount),
	}
	// Without a PIN only admins can clear a shift.
	if pin := strings.TrimSpace(opts.ManagerPIN); pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[auth] WARN: manager PIN disabled: %v", err)
		} else {
			a.pinHash = hash
		}
	}
	a.refresh(context.Background())
	return a
}

// Login reloads the accounts first so operators created by caixactl or
// another server can sign in without a restart.
func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	a.refresh(loadCtx)
	cancel()

	account, ok := a.account(req.Username)
	if !ok || bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)) != nil {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	if !account.Active {
		return domain.LoginResponse{}, ErrAccountInactive
	}
	a.rehashIfCheap(ctx, account, req.Password)

	actor := domain.Actor{Username: account.Username, Role: account.Role, Terminal: a.terminal}
	expiresAt := time.Now().UTC().Add(a.ttl)
	token, err := a.issue(actor, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return domain.LoginResponse{
		AccessToken: token,
		Role:        actor.Role,
		Terminal:    actor.Terminal,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) issue(actor domain.Actor, expiresAt time.Time) (string, error) {
	now := time.Now().UTC()
	claims := shiftClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    "caixa",
			Subject:   actor.Username,
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
		Role:     actor.Role,
		Terminal: actor.Terminal,
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken returns the actor a token was issued to. Tokens from another
// terminal are refused even when they share the signing secret.
func (a *AuthManager) ParseToken(raw string) (domain.Actor, error) {
	var claims shiftClaims
	_, err := jwtlib.ParseWithClaims(raw, &claims, func(*jwtlib.Token) (interface{}, error) {
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithIssuer("caixa"))
	if err != nil {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	if claims.Terminal != a.terminal {
		return domain.Actor{}, errOtherTerminal
	}
	return domain.Actor{Username: claims.Subject, Role: claims.Role, Terminal: claims.Terminal}, nil
}

// AuthorizeClear decides whether actor may discard the current shift.
// Admins always may; anyone else needs the manager PIN.
func (a *AuthManager) AuthorizeClear(actor domain.Actor, pin string) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	pin = strings.TrimSpace(pin)
	if pin == "" || a.pinHash == nil || bcrypt.CompareHashAndPassword(a.pinHash, []byte(pin)) != nil {
		return ErrManagerPINRequired
	}
	log.Printf("[auth] manager PIN approved shift clear by %s on %s", actor.Username, a.terminal)
	return nil
}

func (a *AuthManager) CreateOperator(ctx context.Context, req domain.OperatorCreateRequest) (domain.OperatorUser, error) {
	if err := validateOperator(req); err != nil {
		return domain.OperatorUser{}, err
	}
	a.refresh(ctx)

	username := normalizeUsername(req.Username)
	if _, taken := a.account(username); taken {
		return domain.OperatorUser{}, store.ErrUserExists
	}
	hash, err := hashSecret(req.Password)
	if err != nil {
		return domain.OperatorUser{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.UserAccount{
		Username:  username,
		Password:  hash,
		Role:      domain.RoleOperator,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if a.users != nil {
		if err := a.users.CreateUser(ctx, account); err != nil {
			return domain.OperatorUser{}, err
		}
	}

	a.mu.Lock()
	a.accounts[username] = account
	a.mu.Unlock()
	return operatorView(account), nil
}

func (a *AuthManager) ListOperators(ctx context.Context) []domain.OperatorUser {
	a.refresh(ctx)

	a.mu.RLock()
	operators := make([]domain.OperatorUser, 0, len(a.accounts))
	for _, account := range a.accounts {
		if account.Role == domain.RoleOperator {
			operators = append(operators, operatorView(account))
		}
	}
	a.mu.RUnlock()

	sort.Slice(operators, func(i, j int) bool {
		return operators[i].Username < operators[j].Username
	})
	return operators
}

func (a *AuthManager) account(username string) (domain.UserAccount, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	account, ok := a.accounts[normalizeUsername(username)]
	return account, ok
}

// refresh replaces the cached accounts with the user store's. Every writer
// hashes before storing, so an account whose password is not a bcrypt hash
// was edited by hand and is skipped rather than trusted.
func (a *AuthManager) refresh(ctx context.Context) {
	if a.users == nil {
		return
	}
	list, err := a.users.ListUsers(ctx)
	if err != nil {
		log.Printf("[auth] WARN: keeping cached accounts: %v", err)
		return
	}

	accounts := make(map[string]domain.UserAccount, len(list))
	for _, account := range list {
		username := normalizeUsername(account.Username)
		if username == "" {
			continue
		}
		if _, err := bcrypt.Cost([]byte(account.Password)); err != nil {
			log.Printf("[auth] WARN: ignoring account %s: stored password is not a bcrypt hash", username)
			continue
		}
		account.Username = username
		accounts[username] = account
	}

	a.mu.Lock()
	a.accounts = accounts
	a.mu.Unlock()
}

// rehashIfCheap stores a new hash when the account was hashed below the
// current bcrypt cost.
func (a *AuthManager) rehashIfCheap(ctx context.Context, account domain.UserAccount, password string) {
	cost, err := bcrypt.Cost([]byte(account.Password))
	if err != nil || cost >= bcrypt.DefaultCost || a.users == nil {
		return
	}
	hash, err := hashSecret(password)
	if err != nil {
		return
	}
	if err := a.users.UpdateUserPassword(ctx, account.Username, hash); err != nil {
		log.Printf("[auth] WARN: could not rehash password for %s: %v", account.Username, err)
		return
	}
	account.Password = hash
	a.mu.Lock()
	a.accounts[account.Username] = account
	a.mu.Unlock()
}

// validateOperator checks a new operator login. Usernames become token
// subjects and audit actors, so they stay within [a-z0-9._-].
func validateOperator(req domain.OperatorCreateRequest) error {
	username := normalizeUsername(req.Username)
	switch {
	case len(username) < 4 || len(username) > 32:
		return errors.New("operator username needs 4 to 32 characters")
	case strings.IndexFunc(username, isUsernameRuneInvalid) >= 0:
		return errors.New("operator username may only use letters, digits, dot, dash or underscore")
	case len(req.Password) < 6:
		return errors.New("operator password needs at least 6 characters")
	case len(req.Password) > 72:
		return errors.New("operator password is longer than 72 bytes")
	}
	return nil
}

func isUsernameRuneInvalid(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
		return false
	}
	return true
}

func operatorView(account domain.UserAccount) domain.OperatorUser {
	return domain.OperatorUser{
		Username:  account.Username,
		Role:      account.Role,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
