package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xtding233/nurture-economy/internal/config"
	"github.com/xtding233/nurture-economy/internal/engine"
	"github.com/xtding233/nurture-economy/internal/game"
	"github.com/xtding233/nurture-economy/internal/journal"
	"github.com/xtding233/nurture-economy/internal/persist"
)

func main() {
	logger := log.New(os.Stdout, "[economy] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	loader := game.NewLoader(cfg.TablesDir)
	tables, err := loader.Load(cfg.Profile)
	if err != nil {
		logger.Fatalf("tables: %v", err)
	}

	store, err := persist.NewStore(cfg.Store, cfg.DataDir, cfg.SQLitePath)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	eng := engine.New(tables, engine.Options{
		Logger:       logger,
		Store:        store,
		Seed:         cfg.Seed,
		CooldownUnit: cfg.CooldownUnit,
	})
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Load(ctx); err != nil {
		logger.Printf("load: %v", err)
	}

	if cfg.JournalDir != "" {
		jw := journal.NewWriter(cfg.JournalDir, "events")
		defer jw.Close()
		journal.Attach(eng.Events(), jw, logger)
	}
	events := newFeed(logger)
	journal.Attach(eng.Events(), events, logger)

	watcher := game.NewFileWatcher(loader.Paths(cfg.Profile), cfg.ReloadInterval, func(path string) {
		loader.Invalidate()
		t, err := loader.Load(cfg.Profile)
		if err != nil {
			logger.Printf("reload after %s changed: %v (keeping current tables)", path, err)
			return
		}
		eng.ReloadTables(t)
	})
	go watcher.Run(ctx)

	health, err := newHealthServer(cfg.GRPCAddr)
	if err != nil {
		logger.Fatalf("grpc: %v", err)
	}
	go func() {
		if err := health.Serve(); err != nil {
			logger.Printf("grpc serve: %v", err)
		}
	}()

	mux := http.NewServeMux()
	(&api{eng: eng, log: logger}).routes(mux)
	mux.HandleFunc("/events", events.handle)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		logger.Printf("listening on %s (grpc health on %s) ...", cfg.HTTPAddr, cfg.GRPCAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}
	health.Stop()
	if err := eng.Save(shutdownCtx); err != nil {
		logger.Printf("save: %v", err)
	}
}
