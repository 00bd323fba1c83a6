package server

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"voterroll/internal/ingest"
	"voterroll/internal/metrics"
	"voterroll/pkg/types"

	"github.com/sirupsen/logrus"
)

var csvMediaTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
}

var csvFormFields = map[string]bool{
	"csvFile": true,
	"file":    true,
}

type uploadResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    *types.UploadOutcome `json:"data"`
}

type uploadErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (s *Service) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s.extendDeadlines(w, time.Duration(s.config.UploadTimeoutSec)*time.Second)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.UploadMaxBytes)

	part, err := csvPart(r)
	if err != nil {
		if isTooLarge(err) {
			s.writeMessage(w, http.StatusRequestEntityTooLarge, "CSV file is too large")
			return
		}
		s.writeMessage(w, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer part.Close()

	if !isCSV(part) {
		s.writeMessage(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	logger := s.logger.WithFields(logrus.Fields{
		"filename":    part.FileName(),
		"uploaded_by": subjectFromContext(ctx),
	})

	outcome, err := s.uploader.Run(ctx, part)
	if err != nil {
		var headerErr *types.HeaderError
		switch {
		case errors.As(err, &headerErr):
			metrics.RecordUpload(metrics.UploadRejected, nil)
			s.writeJSON(w, http.StatusBadRequest, uploadErrorResponse{
				Message: headerErr.Error(),
				Error:   string(headerErr.Kind),
				Details: headerErr.Details(),
			})
		case errors.Is(err, ingest.ErrUnreadableCSV):
			metrics.RecordUpload(metrics.UploadRejected, nil)
			s.writeJSON(w, http.StatusBadRequest, uploadErrorResponse{
				Message: "CSV file could not be read",
				Error:   "INVALID_CSV",
				Details: "Save the file as comma separated values with a header row, then upload again.",
			})
		case isTooLarge(err):
			metrics.RecordUpload(metrics.UploadRejected, nil)
			s.writeMessage(w, http.StatusRequestEntityTooLarge, "CSV file is too large")
		default:
			metrics.RecordUpload(metrics.UploadFailed, nil)
			logger.WithError(err).Error("csv upload failed")
			s.writeJSON(w, http.StatusInternalServerError, uploadErrorResponse{
				Message: "CSV upload failed",
				Error:   err.Error(),
				Details: "Check server logs for more information",
			})
		}
		return
	}

	metrics.RecordUpload(metrics.UploadAccepted, outcome)

	logger.WithField("run_id", outcome.RunID).Info("csv upload processed")

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Success: true,
		Message: "CSV uploaded and processed successfully",
		Data:    outcome,
	})
}

// extendDeadlines lets a large roll outlast the server-wide read and write
// timeouts.
func (s *Service) extendDeadlines(w http.ResponseWriter, timeout time.Duration) {
	if timeout <= 0 {
		return
	}

	rc := http.NewResponseController(w)
	deadline := time.Now().Add(timeout)

	if err := rc.SetReadDeadline(deadline); err != nil {
		s.logger.WithError(err).Debug("could not extend upload read deadline")
	}
	if err := rc.SetWriteDeadline(deadline); err != nil {
		s.logger.WithError(err).Debug("could not extend upload write deadline")
	}
}

// csvPart returns the first file part named csvFile or file. Parts before it
// are skipped without buffering.
func csvPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, http.ErrMissingFile
			}
			return nil, err
		}

		if csvFormFields[part.FormName()] && part.FileName() != "" {
			return part, nil
		}

		_ = part.Close()
	}
}

func isCSV(part *multipart.Part) bool {
	if strings.HasSuffix(strings.ToLower(part.FileName()), ".csv") {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
	return err == nil && csvMediaTypes[mediaType]
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
