package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/prepaid-kiosk/internal/config"
	"github.com/iliyamo/prepaid-kiosk/internal/database"
	"github.com/iliyamo/prepaid-kiosk/internal/handler"
	"github.com/iliyamo/prepaid-kiosk/internal/kiosk"
	"github.com/iliyamo/prepaid-kiosk/internal/ledger"
	"github.com/iliyamo/prepaid-kiosk/internal/middleware"
	"github.com/iliyamo/prepaid-kiosk/internal/queue"
	"github.com/iliyamo/prepaid-kiosk/internal/repository"
	"github.com/iliyamo/prepaid-kiosk/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	client, err := ledger.NewMySQLClient(db, cfg.Ledger.BookProcedure, cfg.Ledger.Timeout)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}

	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := kiosk.Deps{
		Ledger:        client,
		LookupDelay:   cfg.Kiosk.LookupDelay,
		LookupTimeout: cfg.Ledger.Timeout,
		Methods:       cfg.Kiosk.PaymentMethods,
		QuickAmounts:  cfg.Kiosk.QuickAmounts,
	}
	if cfg.Queue.Enabled {
		deps.Publisher = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name)
		go func() {
			err := queue.StartTransactionConsumer(ctx, queue.ConsumerConfig{
				URL: cfg.Queue.URL, Queue: cfg.Queue.Name, LogPath: cfg.Queue.LogPath,
			})
			log.Printf("ledger-consumer: stopped: %v", err)
		}()
	}

	sessions := kiosk.NewSessions(cfg.Kiosk.SessionTTL)
	go sessions.Run(ctx, cfg.Kiosk.SweepInterval)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	items := repository.NewItemRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.Metrics())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(items, client), cache, limit)
	router.RegisterKiosk(e, handler.NewKioskHandler(sessions, items, deps), limit)
	router.RegisterAdmin(e, router.Admin{
		Payments: handler.NewPaymentHandler(sessions, deps),
		Members:  handler.NewMemberHandler(repository.NewAccountRepo(db)),
		Items: handler.NewItemHandler(items, func(ctx context.Context) {
			if err := middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix); err != nil {
				log.Printf("cache: invalidate: %v", err)
			}
		}),
		Roles: handler.NewRoleHandler(users, tokens),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	sessions.CloseAll()
	if rdb != nil {
		_ = rdb.Close()
	}
}
