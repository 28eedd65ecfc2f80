package service

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Pruner drops expired sessions and reports how many were removed.
type Pruner interface {
	Prune() int
}

// StartSessionSweeper runs p.Prune on the cron schedule spec. Validation
// already rejects expired sessions lazily; the sweep only keeps
// sessions.json from growing without bound. Stop the returned cron on
// shutdown.
func StartSessionSweeper(spec string, p Pruner, log *logrus.Logger) (*cron.Cron, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { sweepOnce(p, log) }); err != nil {
		return nil, fmt.Errorf("session sweep schedule %q: %w", spec, err)
	}
	c.Start()
	log.WithField("schedule", spec).Info("session sweeper started")
	return c, nil
}

func sweepOnce(p Pruner, log *logrus.Logger) int {
	n := p.Prune()
	if n > 0 {
		log.WithField("removed", n).Info("expired sessions pruned")
	}
	return n
}
