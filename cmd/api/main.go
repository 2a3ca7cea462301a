package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "pet-lost-found/docs"
	"pet-lost-found/internal/adapters/auth/identity"
	"pet-lost-found/internal/domain/matching"
	"pet-lost-found/internal/platform/logger"
	"pet-lost-found/internal/ports/auth"
	"pet-lost-found/internal/router"
)

// @title Pet Lost & Found API
// @version 1.0
// @description Motor de matching entre reportes de mascotas perdidas y encontradas.
// @BasePath /
func main() {
	// .env es opcional; en deploy las vars vienen del entorno.
	_ = godotenv.Load()

	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	handler, matchingSvc := router.NewRouter(router.Options{
		AuthVerifier: verifierFromEnv(log),
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sweeper en background: atrapa pares que el recompute inline se perdió.
	sweeper := matching.NewSweeper(matchingSvc, sweepIntervalFromEnv(), log)
	go sweeper.Run(ctx)

	go func() {
		log.Info("starting server", map[string]any{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", map[string]any{"error": err.Error()})
	}
}

// verifierFromEnv instancia el verifier del identity service solo si está
// configurado. Sin AUTH_BASE_URL el middleware queda en modo dev
// (X-Debug-User-ID).
func verifierFromEnv(log logger.Logger) auth.AuthVerifier {
	baseURL := strings.TrimSpace(os.Getenv("AUTH_BASE_URL"))
	if baseURL == "" {
		return nil
	}

	client, err := identity.NewClient(identity.Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("AUTH_API_KEY"),
	})
	if err != nil {
		log.Warn("identity client misconfigured, running without verifier", map[string]any{"error": err.Error()})
		return nil
	}
	return identity.NewVerifier(client)
}

func sweepIntervalFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("MATCH_SWEEP_INTERVAL"))
	if raw == "" {
		return 0 // NewSweeper aplica el default
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
