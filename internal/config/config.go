package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"caixa/backend/internal/money"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	AuthSecret            string
	AccessTokenTTLMinutes int
	ManagerPIN            string
	TerminalID            string
	SnapshotKey           string
	StartingFloatKey      string
	CashbackKeyPrefix     string
	DefaultStartingFloat  money.Amount
	LoginRateLimit        int
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	loginLimit, err := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT_PER_MINUTE", "10"))
	if err != nil || loginLimit < 1 {
		loginLimit = 10
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		ManagerPIN:            strings.TrimSpace(os.Getenv("MANAGER_PIN")),
		TerminalID:            getEnv("TERMINAL_ID", "caixa-01"),
		SnapshotKey:           getEnv("SNAPSHOT_KEY", "caixa:shift"),
		StartingFloatKey:      getEnv("STARTING_FLOAT_KEY", "caixa:starting_float"),
		CashbackKeyPrefix:     getEnv("CASHBACK_KEY_PREFIX", "cashback:"),
		DefaultStartingFloat:  money.NonNegative(money.Parse(getEnv("DEFAULT_STARTING_FLOAT", "0"))),
		LoginRateLimit:        loginLimit,
	}

	return cfg
}

// Validate reports every setting the server refuses to start with.
func (c Config) Validate() error {
	var errs []error
	if len(c.AuthSecret) < 32 {
		errs = append(errs, errors.New("AUTH_SECRET must hold at least 32 characters"))
	}
	if reason := weakPIN(c.ManagerPIN); reason != "" {
		errs = append(errs, fmt.Errorf("MANAGER_PIN %s", reason))
	}
	if strings.TrimSpace(c.TerminalID) == "" {
		errs = append(errs, errors.New("TERMINAL_ID must not be blank"))
	}
	return errors.Join(errs...)
}

// PINs an onlooker at the till would guess first.
var guessablePINs = map[string]bool{
	"102030": true, "112233": true, "121212": true, "123123": true,
	"123321": true, "147258": true, "159753": true, "101010": true,
}

// weakPIN says why pin is easy to guess, or returns "" when it is not.
func weakPIN(pin string) string {
	if len(pin) < 6 {
		return "must have at least 6 digits"
	}
	if strings.IndexFunc(pin, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return "must only contain digits"
	}
	if guessablePINs[pin] {
		return "is on the common-PIN list"
	}
	// One step between every digit pair means a repeat or a straight run.
	step := int(pin[1]) - int(pin[0])
	for i := 2; i < len(pin); i++ {
		if int(pin[i])-int(pin[i-1]) != step {
			return ""
		}
	}
	return "must not repeat one digit or count up or down"
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
