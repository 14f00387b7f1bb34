package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/hardbottle/internal/auth"
	"github.com/dukerupert/hardbottle/internal/database"
	"github.com/dukerupert/hardbottle/internal/logging"
	"github.com/dukerupert/hardbottle/internal/server"
)

func main() {
	port := os.Getenv("HARDBOTTLE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HARDBOTTLE_DB_PATH")
	if dbPath == "" {
		dbPath = "hardbottle.db"
	}

	jwtSecret := os.Getenv("HARDBOTTLE_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("HARDBOTTLE_JWT_SECRET is required")
	}

	logger := logging.Setup(os.Getenv("HARDBOTTLE_LOG_LEVEL"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	tokens := auth.NewTokenService(jwtSecret, "hardbottle", 24*time.Hour)

	srv := server.New(db, tokens, logger)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Hardbottle running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
