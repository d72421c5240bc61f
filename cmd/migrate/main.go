package main

import (
	"errors"
	"flag"

	"walletwhiz/internal/config"
	"walletwhiz/internal/database"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	status := flag.Bool("status", false, "print the current schema version and exit")
	flag.Parse()

	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config.Load")
	}

	db, err := database.OpenMigrationDB(&cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("database.OpenMigrationDB")
	}
	defer db.Close()

	runner := database.NewMigrationRunner(db, cfg.Database.Driver)
	if err := runner.WaitForDatabase(); err != nil {
		logrus.WithError(err).Fatal("runner.WaitForDatabase")
	}

	if !*status {
		if err := runner.RunMigrations(); err != nil {
			logrus.WithError(err).Fatal("runner.RunMigrations")
		}
	}

	version, dirty, err := runner.GetMigrationStatus()
	if errors.Is(err, migrate.ErrNilVersion) {
		logrus.Info("no migrations applied")
		return
	}
	if err != nil {
		logrus.WithError(err).Fatal("runner.GetMigrationStatus")
	}

	logrus.WithFields(logrus.Fields{
		"driver":  cfg.Database.Driver,
		"version": version,
		"dirty":   dirty,
	}).Info("migration status")
}
