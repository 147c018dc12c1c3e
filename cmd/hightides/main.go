// Command hightides fetches this week's high tides for a list of locations
// once and prints them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/spencer-p/hightides/pkg/config"
	"github.com/spencer-p/hightides/pkg/locations"
	"github.com/spencer-p/hightides/pkg/report"
)

func main() {
	var (
		file   string
		asJSON bool
	)
	flag.StringVar(&file, "f", "", "locations file, YAML or JSON (default: Essex County beaches)")
	flag.StringVar(&file, "file", "", "same as -f")
	flag.BoolVar(&asJSON, "json", false, "print results as JSON")
	flag.Parse()

	if err := run(file, asJSON); err != nil {
		log.Fatal(err)
	}
}

func run(file string, asJSON bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.LocationsFile
	}
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}

	set, err := locations.ReadFile(file)
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", cfg.LockFile, err)
	}
	if !locked {
		return errors.New("another hightides run holds " + cfg.LockFile)
	}
	defer lock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	runner := cfg.Runner(cfg.Opener(logger), store, logger)
	results, err := runner.Run(ctx, set)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Entries(set.Keys(), results))
	}
	return report.Render(os.Stdout, set.Keys(), results)
}
