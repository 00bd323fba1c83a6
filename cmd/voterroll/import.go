package main

import (
	"fmt"

	"voterroll/internal/db"
	"voterroll/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "Ingest a voter roll CSV from disk",
	ArgsUsage: "<file.csv>",
	Action: func(cCtx *cli.Context) error {
		path := cCtx.Args().First()
		if path == "" {
			return fmt.Errorf("pass the CSV file to import")
		}

		config, err := loadConfig(cCtx)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(config)

		pool, err := db.Connect(cCtx.Context, config)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		uploader, err := newUploader(cCtx.Context, config, logger, store.NewVoterRepository(pool))
		if err != nil {
			return err
		}

		outcome, err := uploader.RunFile(cCtx.Context, path)
		if err != nil {
			return err
		}

		pp.Println(outcome)

		return nil
	},
}
