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
	"FlowScope/internal/engine"
	"FlowScope/internal/ingest"
	"FlowScope/internal/model"
	"FlowScope/internal/session"
	"FlowScope/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	flag.Parse()

	log.Println("Starting fs-engine...")

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Build the session and its saved-filter store
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

	// 3. Initialize the ingest manager
	mgr, err := engine.NewManager(cfg, sess)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	mgr.Start()

	// 4. Subscribe to the record stream
	sub, err := ingest.NewSubscriber(cfg.Ingest)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	input := mgr.InputChannel()
	if err := sub.Start(func(rec model.FlowRecord) {
		input <- rec
	}); err != nil {
		log.Fatalf("Subscriber failed to start: %v", err)
	}

	// 5. Serve the API over the live session
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: api.NewServer(sess, nil).Router(),
	}
	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// 6. Wait for a shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping...")
	sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("API server forced to shutdown: %v", err)
	}

	mgr.Stop()
	log.Println("Shutdown complete.")
}
