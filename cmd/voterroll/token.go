package main

import (
	"fmt"
	"time"

	"voterroll/internal/auth"

	"github.com/urfave/cli/v2"
)

var tokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Mint an admin bearer token signed with AUTH_JWT_SECRET",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "subject",
			Aliases: []string{"s"},
			Usage:   "Token subject",
			Value:   "admin",
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Usage: "How long the token stays valid",
			Value: 24 * time.Hour,
		},
	},
	Action: func(cCtx *cli.Context) error {
		config, err := loadConfig(cCtx)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		token, err := auth.Mint(config.AuthJWTSecret, config.AuthIssuer, cCtx.String("subject"), cCtx.Duration("ttl"))
		if err != nil {
			return fmt.Errorf("failed to mint token: %w", err)
		}

		fmt.Println(token)

		return nil
	},
}
