package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"voterroll/internal/render"
	"voterroll/pkg/types"

	"github.com/alexedwards/flow"
)

// slipVoter loads the voter named by the :id param, writing the error
// response itself when it cannot.
func (s *Service) slipVoter(w http.ResponseWriter, r *http.Request) (*types.Voter, bool) {
	ctx := r.Context()

	id, err := strconv.ParseInt(flow.Param(ctx, "id"), 10, 64)
	if err != nil || id < 1 {
		s.writeError(w, http.StatusBadRequest, "Invalid voter ID")
		return nil, false
	}

	voter, err := s.voters.VoterByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrVoterNotFound) {
			s.writeError(w, http.StatusNotFound, "Voter not found")
			return nil, false
		}
		s.logger.WithError(err).WithField("voter_id", id).Error("failed to load voter for slip")
		s.internalServerError(w)
		return nil, false
	}

	return voter, true
}

func (s *Service) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	voter, ok := s.slipVoter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.VoterSlip(&buf, voter, s.config.PosterPath); err != nil {
		s.logger.WithError(err).WithField("voter_id", voter.ID).Error("failed to render voter slip")
		s.writeError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	s.writeAttachment(w, "application/pdf", render.SlipFilename(voter), &buf, voter.ID)
}

func (s *Service) handleShareImage(w http.ResponseWriter, r *http.Request) {
	voter, ok := s.slipVoter(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.VoterShareImage(&buf, voter, s.config.PosterPath); err != nil {
		s.logger.WithError(err).WithField("voter_id", voter.ID).Error("failed to render share image")
		s.writeError(w, http.StatusInternalServerError, "Failed to generate share image")
		return
	}

	s.writeAttachment(w, "image/png", render.ShareFilename(voter), &buf, voter.ID)
}

func (s *Service) writeAttachment(w http.ResponseWriter, contentType, filename string, buf *bytes.Buffer, voterID int64) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		s.logger.WithError(err).WithField("voter_id", voterID).Warn("failed to write attachment")
	}
}
