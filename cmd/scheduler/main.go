package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"stacksave/internal/repository"
	"stacksave/internal/services"
	"stacksave/pkg/config"
)

const snapshotTimeout = 5 * time.Minute

func main() {
	cfg := config.Load()
	config.InitLogger(cfg)

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	logrus.Info("> Database connection initialized")

	query := services.NewQueryService(repository.NewGorm(db))

	runSnapshot := func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()

		n, err := query.SnapshotProtocolAPY(ctx)
		if err != nil {
			logrus.Errorf("> Failed to record protocol APY snapshots: %v", err)
			return
		}
		logrus.Infof("> Recorded %d protocol APY snapshots", n)
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.SnapshotCron, runSnapshot); err != nil {
		logrus.Fatalf("> Failed to add snapshot job: %v", err)
	}

	// Record today's point right away; the job skips protocols already captured.
	runSnapshot()

	c.Start()
	logrus.Infof("> Snapshot job scheduled (%s)", cfg.SnapshotCron)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	<-c.Stop().Done()
	logrus.Info("> Scheduler stopped")
}
