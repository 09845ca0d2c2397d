package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FlowScope/internal/api"
	"FlowScope/internal/config"
	"FlowScope/internal/model"
	"FlowScope/internal/query"
	"FlowScope/internal/session"
	"FlowScope/internal/storage"
)

// fs-api serves a standalone analysis session backed by the durable
// record store: sessions are populated through the load endpoint rather
// than the live ingest stream.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Find the first enabled ClickHouse writer config for the querier.
	var chCfg *config.ClickHouseConfig
	for _, def := range cfg.Storage.Writers {
		if def.Enabled && def.Type == "clickhouse" {
			chCfg = &def.ClickHouse
			break
		}
	}
	if chCfg == nil {
		log.Fatalf("No enabled ClickHouse writer found in config. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(*chCfg)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	var store model.Store
	if cfg.Storage.FilterStore != "" {
		sqlStore, err := storage.NewSQLiteStore(cfg.Storage.FilterStore)
		if err != nil {
			log.Fatalf("Failed to open filter store: %v", err)
		}
		store = sqlStore
	} else {
		store = storage.NewMemoryStore()
	}
	sess := session.New(store, cfg.Engine.TopN)

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: api.NewServer(sess, querier).Router(),
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
