package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/spencer-p/hightides/pkg/config"
	"github.com/spencer-p/hightides/pkg/handlers"
	"github.com/spencer-p/hightides/pkg/locations"
	"github.com/spencer-p/hightides/pkg/metrics"
)

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}
	logger, err := env.Logger(os.Stderr)
	if err != nil {
		log.Fatal(err.Error())
	}
	set, err := locations.ReadFile(env.LocationsFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := env.OpenStore(ctx)
	if err != nil {
		log.Fatal(err.Error())
	}
	if closer != nil {
		defer closer.Close()
	}
	runner := env.Runner(env.Opener(logger), store, logger)
	// Both stores keep an archive of past runs.
	archive, _ := store.(handlers.Archive)

	r := mux.NewRouter().StrictSlash(true)
	r.Use(metrics.LatencyHandler)
	s := r.PathPrefix(env.Prefix).Subrouter()
	handlers.Register(s, handlers.NewHighTides(runner, set, archive, env.CacheTTL, logger))

	srv := &http.Server{
		Handler: r,
		Addr:    "0.0.0.0:" + env.Port,
		// A cold run searches every location; leave it room.
		WriteTimeout: 15 * time.Minute,
		ReadTimeout:  15 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening and serving", "addr", srv.Addr, "prefix", env.Prefix, "locations", len(set.Locations), "mode", set.Mode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
