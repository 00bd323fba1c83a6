package main

import (
	"fmt"

	"voterroll/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:      "migrate",
	Usage:     "Apply, roll back or list database migrations",
	ArgsUsage: "[up|down|status]",
	Action: func(cCtx *cli.Context) error {
		direction := cCtx.Args().First()
		if direction == "" {
			direction = db.MigrateUp
		}

		config, err := loadConfig(cCtx)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		pool, err := db.Connect(cCtx.Context, config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(cCtx.Context, pool, config.DatabaseSchema, direction); err != nil {
			return err
		}

		logrus.WithField("direction", direction).Info("migrations complete")

		return nil
	},
}
