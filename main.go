package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/abstract-tutoring/card-crafter/config"
	"github.com/abstract-tutoring/card-crafter/handlers"
	"github.com/abstract-tutoring/card-crafter/services"
	"github.com/abstract-tutoring/card-crafter/store"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found or error loading it:", err)
	}

	configPath := flag.String("config", os.Getenv("CARD_CRAFTER_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Config error:", err)
	}
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		log.Fatal("Config error:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := store.OpenBackend(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Storage error:", err)
	}
	defer closeBackend()

	st := store.New(backend, cfg.Storage.Key)
	collection := st.Load(ctx)
	log.Printf("Loaded %d flashcard groups from %s storage", len(collection), cfg.Storage.Driver)

	images := services.NewImageLoader(nil, timeout)
	h := handlers.New(st, images, cfg.BaseURL, cfg.DevelopmentMode)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("Server listening on", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
