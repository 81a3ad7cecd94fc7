// Command server runs PLOX's HTTP API: the same sort/verify/list
// operations the CLI exposes, reachable as JSON for a GUI or other
// out-of-process consumer.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/rfuzzo/plox/internal/cache"
	"github.com/rfuzzo/plox/internal/config"
	"github.com/rfuzzo/plox/internal/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ruleCache, err := cache.New(cache.Config{DBPath: cfg.CacheDBPath})
	if err != nil {
		log.Fatalf("Failed to open rule cache: %v", err)
	}

	deps := handlers.Deps{Defaults: cfg, Cache: ruleCache}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", healthHandler)
	mux.HandleFunc("POST /api/sort", handlers.SortHandler{Deps: deps}.Sort)
	mux.HandleFunc("POST /api/verify", handlers.VerifyHandler{Deps: deps}.Verify)
	mux.HandleFunc("GET /api/list", handlers.ListHandler{Deps: deps}.List)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Port)
		log.Printf("Environment: %s", cfg.Environment)
		log.Printf("Game: %s", cfg.Game)
		log.Printf("Rules directory: %s", cfg.RulesDir)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	if err := ruleCache.Close(); err != nil {
		log.Printf("Error closing cache: %v", err)
	}

	log.Println("Server stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
