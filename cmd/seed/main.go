package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"stacksave/internal/repository"
	"stacksave/internal/seed"
	"stacksave/pkg/config"
)

func main() {
	strict := flag.Bool("strict", false, "reject strategies whose allocations do not total 100")
	migrateFirst := flag.Bool("migrate", true, "apply pending migrations before seeding")
	rollback := flag.Bool("rollback", false, "roll back the latest migration and exit")
	flag.Parse()

	cfg := config.Load()
	config.InitLogger(cfg)

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}

	if *rollback {
		if err := config.RollbackMigration(db, cfg.Database.MigrationsDir); err != nil {
			logrus.Fatalf("Failed to roll back migration: %v", err)
		}
		return
	}

	if *migrateFirst {
		if err := config.ExecuteMigrations(db, cfg.Database.MigrationsDir); err != nil {
			logrus.Fatalf("Failed to migrate database: %v", err)
		}
	}

	logrus.Info("Seeding database with IDRX pairs...")

	repos := repository.NewGorm(db)
	summary, err := seed.Run(context.Background(), repos.Seeder, seed.Demo(), seed.Options{Strict: *strict})
	if err != nil {
		logrus.Fatalf("Error seeding database: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"protocols":   summary.Protocols,
		"strategies":  summary.Strategies,
		"allocations": summary.Allocations,
	}).Info("Database seeded successfully")
}
