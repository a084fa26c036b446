package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"peopledesk.org/internal/auth"
	"peopledesk.org/internal/hr"
	"peopledesk.org/internal/httpapi"
	"peopledesk.org/internal/media"
	"peopledesk.org/internal/obs"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	dsn := os.Getenv("PEOPLEDESK_PG_DSN")
	if dsn == "" {
		log.Fatal("missing PEOPLEDESK_PG_DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	uploader, err := media.NewClient(
		envOr("PEOPLEDESK_MEDIA_URL", "http://localhost:9000"),
		os.Getenv("PEOPLEDESK_MEDIA_KEY"),
	)
	if err != nil {
		log.Fatalf("media client: %v", err)
	}

	employees := auth.NewPGEmployeeStore(db)
	authOpts := []auth.ServiceOption{
		auth.WithAccessSecret(os.Getenv("PEOPLEDESK_ACCESS_SECRET")),
		auth.WithRefreshSecret(os.Getenv("PEOPLEDESK_REFRESH_SECRET")),
	}
	if ttl := durationOr("PEOPLEDESK_ACCESS_TTL", 0); ttl > 0 {
		authOpts = append(authOpts, auth.WithAccessTTL(ttl))
	}
	if ttl := durationOr("PEOPLEDESK_REFRESH_TTL", 0); ttl > 0 {
		authOpts = append(authOpts, auth.WithRefreshTTL(ttl))
	}
	authSvc, err := auth.NewService(employees, authOpts...)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	hrSvc := hr.NewService(hr.NewPGStore(db), uploader)

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, employees, hrSvc, uploader)

	srv := &http.Server{
		Addr:              envOr("PEOPLEDESK_ADDR", ":8080"),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	obs.Info("starting peopledesk-api", map[string]any{
		"version": version,
		"addr":    srv.Addr,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	obs.Info("shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		obs.Error("shutdown", err, nil)
	}
	_ = db.Close()
	obs.Info("stopped", nil)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("parse %s: %v", key, err)
	}
	return d
}
