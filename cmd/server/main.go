package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caixa/backend/internal/app"
	"caixa/backend/internal/config"
	"caixa/backend/internal/httpapi"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("refusing to start: %v", err)
	}
	log.Printf("repository: %s, terminal: %s", backend.Kind, cfg.TerminalID)

	svc := backend.Service
	if _, found, err := svc.Load(ctx); err != nil {
		log.Printf("[server] WARN: could not load saved shift (%v), starting empty", err)
	} else if found {
		log.Println("restored saved shift")
	}

	server := newServer(cfg, backend)

	go func() {
		log.Printf("caixa backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	if state := svc.State(); state.Dirty {
		log.Println("[server] WARN: shift had unsaved changes at shutdown")
	}

	backend.Close()
	log.Println("server stopped")
}

// newServer wires the HTTP API for this terminal onto an opened backend.
func newServer(cfg config.Config, backend *app.Backend) *http.Server {
	auth := httpapi.NewAuthManager(httpapi.AuthOptions{
		Secret:     cfg.AuthSecret,
		TokenTTL:   time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute,
		ManagerPIN: cfg.ManagerPIN,
		Terminal:   cfg.TerminalID,
	}, backend.Users)
	api := httpapi.New(backend.Service, auth, httpapi.Options{
		AllowedOrigin:  cfg.AllowedOrigin,
		LoginRateLimit: cfg.LoginRateLimit,
		Metrics:        backend.Metrics,
	})

	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
