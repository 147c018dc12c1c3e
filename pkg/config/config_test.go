package config

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/hightides/pkg/data"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Port:        "8080",
		Prefix:      "/",
		Workers:     1,
		MaxAttempts: 10,
		QuickWait:   5 * time.Second,
		LongWait:    30 * time.Second,
		SQLitePath:  "hightides.db",
		Postgres: data.PostgresConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Database: "hightides",
			TimeZone: "America/New_York",
		},
		CacheTTL: 23 * time.Hour,
		LockFile: "/tmp/hightides.lock",
		LogLevel: "info",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("defaults (-want,+got): %s", diff)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HIGHTIDES_WORKERS", "3")
	t.Setenv("HIGHTIDES_QUICK_WAIT", "2s")
	t.Setenv("HIGHTIDES_LOCATIONS_FILE", "beaches.yaml")
	t.Setenv("HIGHTIDES_SEARCH_RATE", "0.5")
	t.Setenv("HIGHTIDES_POSTGRES_HOST", "db.internal")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Workers != 3 || c.QuickWait != 2*time.Second || c.LocationsFile != "beaches.yaml" || c.Postgres.Host != "db.internal" {
		t.Errorf("overrides not applied: %+v", c)
	}

	e := c.Engine(nil)
	if e.Limiter == nil {
		t.Fatalf("search rate set but engine has no limiter")
	}
	if got := float64(e.Limiter.Limit()); got != 0.5 {
		t.Errorf("limiter rate %v, want 0.5", got)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("HIGHTIDES_WORKERS", "many")
	if _, err := Load(); err == nil {
		t.Errorf("expected error for non-numeric workers")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Config{LogLevel: "warn"}.Logger(&buf)
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected log output %q", out)
	}

	if _, err := (Config{LogLevel: "chatty"}).Logger(&buf); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, closer, err := Config{}.OpenStore(ctx)
	if store != nil || closer != nil || err != nil {
		t.Errorf("no store configured: got %v, %v, %v", store, closer, err)
	}

	c := Config{Store: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "t.db")}
	store, closer, err = c.OpenStore(ctx)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := store.(*data.SQLite); !ok {
		t.Errorf("got %T, want *data.SQLite", store)
	}
	closer.Close()

	if _, _, err := (Config{Store: "mongo"}).OpenStore(ctx); err == nil {
		t.Errorf("expected error for unknown store")
	}
}
