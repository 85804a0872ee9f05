package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/medialens/medialens/internal/api"
	"github.com/medialens/medialens/internal/cache"
	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/version"
)

func main() {
	ver := version.Load()
	log.Printf("MediaLens %s starting...", ver.Version)

	cfg := config.Load()
	log.Printf("data source=%s, cache enabled=%v backend=%s", cfg.DataSource, cfg.CacheEnabled, cfg.CacheBackend)

	store, err := cache.New(cfg)
	if err != nil {
		log.Fatalf("cache init failed: %v", err)
	}
	defer store.Close()

	srv := api.NewServer(cfg, ver, store)

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
}
