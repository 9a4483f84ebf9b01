package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	LogLevel      string
	Env           string // dev|prod
	Location      *time.Location
	SentryDSN     string
	Release       string
	BotToken      string // пусто — уведомления в Telegram выключены
	AdminIDs      []int64
	SweepInterval time.Duration
	DBTimeout     time.Duration
	SeedDemo      bool // SEED_DEMO=1 — демо-данные в пустую БД
}

func Load() (*Config, error) {
	tz := getenv("TZ", "America/Sao_Paulo")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}
	sweep, err := parseDuration("SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	dbTimeout, err := parseDuration("DB_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("required env DATABASE_URL is empty")
	}

	cfg := &Config{
		DatabaseURL:   dsn,
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		Location:      loc,
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Release:       getenv("RELEASE", "dev"),
		BotToken:      os.Getenv("BOT_TOKEN"),
		AdminIDs:      adminIDs,
		SweepInterval: sweep,
		DBTimeout:     dbTimeout,
		SeedDemo:      parseBool(os.Getenv("SEED_DEMO")),
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseDuration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", k, d)
	}
	return d, nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
