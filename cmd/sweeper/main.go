package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"authgate/core"
)

// The sweeper reclaims expired rows from the Postgres session table. It is
// optional: resolve-time expiry checks stay authoritative whether or not it
// runs.
func main() {
	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logCloser, err := core.SetupLogging(cfg, "sweeper.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	if cfg.AuthType != core.AuthTypePersistedSession || cfg.SessionBackend != core.SessionBackendPostgres {
		log.Fatalf("sweeper only applies to persisted-session auth on the postgres backend")
	}

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	store, err := core.NewPgSessionStore(db, time.Duration(cfg.SessionDuration)*time.Second)
	if err != nil {
		log.Fatalf("failed to build session store: %v", err)
	}

	interval := time.Duration(cfg.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	log.Printf("sweeper started interval=%s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper stopping")
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				log.Printf("purge expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired sessions", n)
			}
		}
	}
}
