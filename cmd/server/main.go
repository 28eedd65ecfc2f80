package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/task-tracker/internal/config"
	"github.com/iliyamo/task-tracker/internal/handler"
	"github.com/iliyamo/task-tracker/internal/repository"
	"github.com/iliyamo/task-tracker/internal/router"
	"github.com/iliyamo/task-tracker/internal/service"
	"github.com/iliyamo/task-tracker/internal/store"
	"github.com/iliyamo/task-tracker/internal/utils"
)

func main() {
	cfg := config.Load()
	log := utils.NewLogger(cfg.LogLevel)
	for _, n := range cfg.Notices {
		log.Warn("config: " + n)
	}

	st, err := store.New(cfg.DataDir, log)
	if err != nil {
		log.WithError(err).Fatal("open data directory")
	}

	hasher := utils.NewPasswordHasher(utils.Argon2Params{
		Time:    cfg.Argon2Time,
		Memory:  cfg.Argon2MemoryKiB,
		Threads: cfg.Argon2Threads,
	})
	counters := repository.NewCounters(st)
	users := repository.NewUserRepo(st, counters, hasher)
	sessions := repository.NewSessionRepo(st, users, cfg.SessionTTL)
	tasks := repository.NewTaskRepo(st, counters)

	var events handler.EventPublisher = service.NopPublisher{}
	if cfg.Events.Enabled {
		events = service.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Queue)
		log.WithField("queue", cfg.Events.Queue).Info("event publishing enabled")
	}

	var rdb *redis.Client
	if cfg.RateLimit.Enabled {
		rdb, err = config.NewRedisClient(context.Background(), config.LoadRedisConfig())
		if err != nil {
			log.WithError(err).Warn("redis unreachable, rate limiting disabled")
		} else {
			defer rdb.Close()
		}
	}

	var sweeper *cron.Cron
	if cfg.SweepSchedule != "" {
		sweeper, err = service.StartSessionSweeper(cfg.SweepSchedule, sessions, log)
		if err != nil {
			log.WithError(err).Fatal("start session sweeper")
		}
	}

	e := router.New(router.Deps{
		Auth:      &handler.AuthHandler{Users: users, Sessions: sessions, Events: events, Log: log},
		Tasks:     &handler.TaskHandler{Tasks: tasks, Events: events, Log: log},
		Sessions:  sessions,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		Log:       log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "data_dir": cfg.DataDir}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
