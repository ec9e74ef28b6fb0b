package config

import (
	"testing"
	"time"
)

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", User: "wt", Password: "secret", DBName: "whiskertrack"}
	dsn, err := p.DSN()
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	want := "postgres://wt:secret@db:5432/whiskertrack?sslmode=disable"
	if dsn != want {
		t.Fatalf("dsn = %q, want %q", dsn, want)
	}
}

func TestPostgresDSNPrefersURL(t *testing.T) {
	p := PostgresConfig{URL: "postgres://u:p@h/d", Host: "ignored"}
	dsn, err := p.DSN()
	if err != nil {
		t.Fatalf("DSN: %v", err)
	}
	if dsn != "postgres://u:p@h/d" {
		t.Fatalf("dsn = %q", dsn)
	}
}

func TestPostgresDSNUnconfigured(t *testing.T) {
	if _, err := (PostgresConfig{}).DSN(); err == nil {
		t.Fatal("expected error for unconfigured postgres")
	}
}

func TestArchiveNormalizeDefaults(t *testing.T) {
	a := ArchiveConfig{}.Normalize()
	if a.DraftTTL != 72*time.Hour {
		t.Fatalf("draft ttl = %v", a.DraftTTL)
	}
	if a.RefreshCron != "@daily" {
		t.Fatalf("refresh cron = %q", a.RefreshCron)
	}
	if a.AssumedYear != 0 {
		t.Fatalf("assumed year = %d", a.AssumedYear)
	}
}

func TestArchiveValidateRejectsNegativeYear(t *testing.T) {
	if err := (ArchiveConfig{AssumedYear: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative assumed year")
	}
}
