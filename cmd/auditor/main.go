// Command auditor consumes task-tracker domain events and appends them to
// the audit log.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/task-tracker/internal/config"
	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/utils"
)

func main() {
	cfg := config.Load()
	log := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:   cfg.Events.URL,
		Queue: cfg.Events.Queue,
		Dir:   cfg.Events.AuditLogDir,
		Log:   log,
	}
	log.WithFields(logrus.Fields{"queue": c.Queue, "dir": c.Dir}).Info("auditor started")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("auditor stopped")
	}
	log.Info("auditor stopped")
}
