package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"authgate/core"
)

func main() {
	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.AuthType == core.AuthTypePersistedSession && cfg.SessionBackend == core.SessionBackendRedis {
		redisClient, err = core.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer redisClient.Close()
	}

	sessions, err := core.NewSessionStore(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to build session store: %v", err)
	}

	userRepo := core.NewPgUserRepository(db)
	strategy, err := core.NewStrategy(cfg, userRepo, sessions)
	if err != nil {
		log.Fatalf("failed to build auth strategy: %v", err)
	}
	service := core.NewAuthService(userRepo, sessions)

	if err := core.BootstrapUser(ctx, userRepo, cfg); err != nil {
		log.Fatalf("bootstrap user failed: %v", err)
	}

	// In-memory expiring sessions get a local reclamation sweep; expiry
	// itself is enforced at resolve time.
	if mem, ok := sessions.(*core.MemorySessionStore); ok && cfg.AuthType == core.AuthTypeExpiringSession {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.SweepIntervalSeconds) * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				if n := mem.PurgeExpired(); n > 0 {
					log.Printf("purged %d expired sessions", n)
				}
			}
		}()
	}

	router := core.NewRouter(cfg, strategy, service)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s auth=%s", addr, cfg.AuthType)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
