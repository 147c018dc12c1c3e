// Package config reads settings from HIGHTIDES_* environment variables and
// builds the pieces a run needs from them.
package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/time/rate"

	"github.com/spencer-p/hightides/pkg/data"
	"github.com/spencer-p/hightides/pkg/page"
	"github.com/spencer-p/hightides/pkg/search"
	"github.com/spencer-p/hightides/pkg/tides"
)

const prefix = "hightides"

type Config struct {
	Port   string `default:"8080"`
	Prefix string `default:"/"`

	// LocationsFile is a YAML or JSON locations file. Empty means the
	// built in Essex County list.
	LocationsFile string `split_words:"true"`

	Workers     int           `default:"1"`
	MaxAttempts int           `split_words:"true" default:"10"`
	QuickWait   time.Duration `split_words:"true" default:"5s"`
	LongWait    time.Duration `split_words:"true" default:"30s"`
	// SearchRate caps searches per second across workers. Zero disables
	// the limit.
	SearchRate float64 `split_words:"true" default:"0"`

	Headed    bool   `default:"false"`
	UserAgent string `split_words:"true"`

	// Store is "", "sqlite" or "postgres".
	Store      string `default:""`
	SQLitePath string `split_words:"true" default:"hightides.db"`
	Postgres   data.PostgresConfig

	// CacheTTL is how long the server reuses a run. Slightly less than a
	// day so daily clients don't see stale data.
	CacheTTL time.Duration `split_words:"true" default:"23h"`
	LockFile string        `split_words:"true" default:"/tmp/hightides.lock"`
	LogLevel string        `split_words:"true" default:"info"`
}

// Load reads the environment.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// Engine returns a search engine shared by all workers.
func (c Config) Engine(logger *slog.Logger) *search.Engine {
	e := &search.Engine{
		MaxAttempts: c.MaxAttempts,
		QuickWait:   c.QuickWait,
		LongWait:    c.LongWait,
		Logger:      logger,
	}
	if c.SearchRate > 0 {
		e.Limiter = rate.NewLimiter(rate.Limit(c.SearchRate), 1)
	}
	return e
}

// Opener starts one headless Chrome per worker.
func (c Config) Opener(logger *slog.Logger) page.Opener {
	return page.BrowserOpener(page.BrowserOptions{
		DisableHeadless: c.Headed,
		UserAgent:       c.UserAgent,
		Logger:          logger,
	})
}

// OpenStore opens the configured store. Both return values are nil when no
// store is configured.
func (c Config) OpenStore(ctx context.Context) (tides.Store, io.Closer, error) {
	switch strings.ToLower(c.Store) {
	case "":
		return nil, nil, nil
	case "sqlite":
		db, err := data.OpenSQLite(ctx, c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case "postgres":
		db, err := data.OpenPostgres(c.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q, want sqlite or postgres", c.Store)
	}
}

// Runner wires an orchestrator from the configuration.
func (c Config) Runner(open page.Opener, store tides.Store, logger *slog.Logger) *tides.Runner {
	return &tides.Runner{
		Open:     open,
		Search:   c.Engine(logger),
		Workers:  c.Workers,
		LongWait: c.LongWait,
		Store:    store,
		Logger:   logger,
	}
}
