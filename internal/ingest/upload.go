package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"voterroll/internal/utils"
	"voterroll/pkg/types"

	"github.com/sirupsen/logrus"
)

// Archiver keeps a copy of an accepted upload. It is optional.
type Archiver interface {
	Archive(ctx context.Context, runID string, file io.Reader) error
}

type Uploader struct {
	logger     *logrus.Logger
	reconciler *Reconciler
	tempDir    string
	archiver   Archiver
}

type Option func(*Uploader)

// WithTempDir sets where uploads are spooled. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(u *Uploader) {
		u.tempDir = dir
	}
}

func WithArchiver(a Archiver) Option {
	return func(u *Uploader) {
		u.archiver = a
	}
}

func NewUploader(logger *logrus.Logger, store VoterStore, opts ...Option) *Uploader {
	u := &Uploader{
		logger:     logger,
		reconciler: NewReconciler(store),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// RunFile ingests the CSV at path.
func (u *Uploader) RunFile(ctx context.Context, path string) (*types.UploadOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return u.Run(ctx, f)
}

// Run spools src to a temp file it owns, validates the header row and then
// reconciles each row in file order. A *types.HeaderError means nothing was
// written. Row level problems never abort the run; they are counted in the
// outcome. The temp file is removed on every return path.
func (u *Uploader) Run(ctx context.Context, src io.Reader) (*types.UploadOutcome, error) {
	runID := utils.NanoIDSize(12)

	tmp, err := os.CreateTemp(u.tempDir, "voterroll-upload-"+runID+"-*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create upload temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.logger.WithError(err).WithField("path", tmp.Name()).Warn("failed to remove upload temp file")
		}
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, fmt.Errorf("failed to spool upload: %w", err)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind upload: %w", err)
	}

	outcome, err := u.process(ctx, runID, tmp)
	if err != nil {
		return nil, err
	}

	if u.archiver != nil {
		u.archive(ctx, runID, tmp)
	}

	return outcome, nil
}

func (u *Uploader) process(ctx context.Context, runID string, src io.Reader) (*types.UploadOutcome, error) {
	logger := u.logger.WithField("run_id", runID)

	reader, err := NewReader(src)
	if err != nil {
		return nil, err
	}

	if err := ValidateHeaders(reader.Headers()); err != nil {
		logger.WithError(err).Info("upload rejected at header row")
		return nil, err
	}

	outcome := &types.UploadOutcome{RunID: runID}

	for rowNum := 1; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			logger.WithError(err).WithField("row", rowNum).Warn("upload cancelled before end of file")
			break
		}

		raw, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		outcome.TotalRowsInCSV++

		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to read CSV row %d: %w", rowNum, err)
			}
			logger.WithError(err).WithField("row", rowNum).Warn("malformed CSV row")
			outcome.Errors++
			continue
		}

		row := Normalize(raw)

		if reason, ok := ValidateRow(row); !ok {
			logger.WithFields(logrus.Fields{
				"row":     rowNum,
				"epic_no": row[FieldEpicNo],
				"reason":  reason,
			}).Debug("skipping row")
			outcome.Skipped++
			continue
		}

		outcome.TotalProcessed++

		result, err := u.reconciler.Reconcile(ctx, RecordFromRow(row))
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"row":     rowNum,
				"epic_no": row[FieldEpicNo],
			}).Warn("failed to process row")
			outcome.Errors++
			continue
		}

		switch result {
		case ResultInserted:
			outcome.Inserted++
		case ResultUpdated:
			outcome.Updated++
		default:
			outcome.Unchanged++
		}
	}

	outcome.Summary = fmt.Sprintf("Processed %d valid records from %d CSV rows", outcome.TotalProcessed, outcome.TotalRowsInCSV)

	logger.WithFields(logrus.Fields{
		"total_rows_in_csv": outcome.TotalRowsInCSV,
		"total_processed":   outcome.TotalProcessed,
		"inserted":          outcome.Inserted,
		"updated":           outcome.Updated,
		"unchanged":         outcome.Unchanged,
		"skipped":           outcome.Skipped,
		"errors":            outcome.Errors,
	}).Info("upload processed")

	return outcome, nil
}

func (u *Uploader) archive(ctx context.Context, runID string, tmp *os.File) {
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		u.logger.WithError(err).WithField("run_id", runID).Warn("failed to rewind upload for archive")
		return
	}

	if err := u.archiver.Archive(ctx, runID, tmp); err != nil {
		u.logger.WithError(err).WithField("run_id", runID).Warn("failed to archive upload")
	}
}
