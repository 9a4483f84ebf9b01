package config

import (
	"testing"
	"time"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 10, 20;30 ")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 || ids[0] != 10 || ids[2] != 30 {
		t.Fatalf("неожиданный результат: %v", ids)
	}
	if _, err := parseIDs("1,x"); err == nil {
		t.Fatal("ожидали ошибку для нечислового id")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/eval")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("TZ", "UTC")
	t.Setenv("ADMIN_IDS", "")
	t.Setenv("SEED_DEMO", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Fatalf("SweepInterval = %s", cfg.SweepInterval)
	}
	if cfg.DBTimeout != 5*time.Second {
		t.Fatalf("DBTimeout = %s", cfg.DBTimeout)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.SeedDemo {
		t.Fatal("SeedDemo по умолчанию выключен")
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", " TRUE "} {
		if !parseBool(v) {
			t.Fatalf("parseBool(%q) = false", v)
		}
	}
	for _, v := range []string{"", "0", "nope"} {
		if parseBool(v) {
			t.Fatalf("parseBool(%q) = true", v)
		}
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("ожидали ошибку без DATABASE_URL")
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/eval")
	t.Setenv("SWEEP_INTERVAL", "-1s")
	if _, err := Load(); err == nil {
		t.Fatal("ожидали ошибку для отрицательного интервала")
	}
}
