package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vncsmyrnk/chatpoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/chatpoll/internal/adapters/notifier"
	"github.com/vncsmyrnk/chatpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/chatpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/chatpoll/internal/adapters/repository/redis"
	"github.com/vncsmyrnk/chatpoll/internal/adapters/scheduler"
	"github.com/vncsmyrnk/chatpoll/internal/config"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
	"github.com/vncsmyrnk/chatpoll/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, cleanup, err := newStore(cfg)
	if err != nil {
		logger.Error("failed to initialize poll store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var notify ports.Notifier
	if cfg.NotifyWebhookURL != "" {
		notify = notifier.NewWebhook(cfg.NotifyWebhookURL)
	} else {
		notify = notifier.NewLog(logger)
	}

	// The scheduler fires back into the lifecycle service, so the
	// callback closes over a variable assigned right after.
	var polls ports.PollService
	sched := scheduler.NewInProcess(func(ctx context.Context, task ports.FinishTask) error {
		_, err := polls.Finish(ctx, task.PollID, task.CreatorID)
		return err
	}, logger)
	defer sched.Stop()

	polls = services.NewPollService(store, sched)
	votes := services.NewVoteService(store)

	handler := http.NewHandler(
		http.NewCommandHandler(polls, notify, logger),
		http.NewInteractionHandler(polls, votes, notify, logger),
		http.NewPollHandler(polls),
		http.RouterOptions{
			PlatformSecret: cfg.PlatformSecret,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		},
	)

	server := &stdhttp.Server{Addr: cfg.Addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", cfg.Addr, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}

func newStore(cfg config.Config) (ports.PollStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewPollRepository(db), func() { db.Close() }, nil
	case config.StoreRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			rdb.Close()
			return nil, nil, err
		}
		return redis.NewPollRepository(rdb), func() { rdb.Close() }, nil
	default:
		return memory.NewPollRepository(), func() {}, nil
	}
}
