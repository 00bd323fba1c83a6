package main

import (
	"context"
	"fmt"
	"time"

	"voterroll/internal/ingest"
	"voterroll/internal/storage"
	"voterroll/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(cCtx *cli.Context) (*types.Config, error) {
	if files := cCtx.StringSlice("env-file"); len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("load env files: %w", err)
		}
	}

	c := new(types.Config)
	if err := envconfig.Process(cCtx.String("env-prefix"), c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}

	return c, nil
}

func newLogger(c *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithError(err).WithField("log_level", c.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

// newUploader wires the upload pipeline, archiving to S3 when a bucket is
// configured.
func newUploader(ctx context.Context, c *types.Config, logger *logrus.Logger, voters ingest.VoterStore) (*ingest.Uploader, error) {
	opts := []ingest.Option{ingest.WithTempDir(c.UploadTempDir)}

	if c.ArchiveBucket != "" {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}

		archive := storage.NewS3Archive(s3.NewFromConfig(awsConfig), c.ArchiveBucket, c.ArchivePrefix)
		opts = append(opts, ingest.WithArchiver(archive))
	}

	return ingest.NewUploader(logger, voters, opts...), nil
}

func gateTTL(c *types.Config) time.Duration {
	return time.Duration(c.SystemGateTTLSec) * time.Second
}
