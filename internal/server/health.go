package server

import (
	"context"
	"net/http"
	"time"

	"voterroll/pkg/types"
)

type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Database    string `json:"database"`
	Table       string `json:"table,omitempty"`
	VotersCount *int   `json:"votersCount,omitempty"`
	DBError     string `json:"dbError,omitempty"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     s.config.Version,
		Environment: s.config.Environment,
		Database:    "connected",
	}

	s.checkDatabase(ctx, &health)

	status := http.StatusOK
	if health.Status == "error" {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, health)
}

func (s *Service) checkDatabase(ctx context.Context, health *healthResponse) {
	if err := s.health.Ping(ctx); err != nil {
		s.logger.WithError(err).Warn("health check could not reach database")
		health.Database = "disconnected"
		health.Status = "error"
		health.DBError = err.Error()
		return
	}

	exists, err := s.health.VoterTableExists(ctx)
	if err != nil {
		health.Status = "error"
		health.DBError = err.Error()
		return
	}

	if !exists {
		health.Table = "missing"
		health.Status = "warning"
		return
	}

	count, err := s.health.CountVoters(ctx, types.VoterFilter{})
	if err != nil {
		health.Status = "error"
		health.DBError = err.Error()
		return
	}

	health.Table = "exists"
	health.VotersCount = &count
}

type endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

type indexResponse struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	Endpoints []endpoint `json:"endpoints"`
	Timestamp string     `json:"timestamp"`
}

var endpoints = []endpoint{
	{Path: "/health", Method: http.MethodGet, Description: "System health check"},
	{Path: "/api/search", Method: "GET, POST", Description: "Search voters by name, identifier, phone or address"},
	{Path: "/api/download-pdf/:id", Method: http.MethodGet, Description: "Download voter slip as PDF"},
	{Path: "/api/share/:id", Method: http.MethodGet, Description: "Download voter slip as a PNG for sharing"},
	{Path: "/api/poster", Method: http.MethodGet, Description: "Poster image availability"},
	{Path: "/api/admin/upload-csv", Method: http.MethodPost, Description: "Upload voter roll CSV (requires auth)"},
	{Path: "/api/admin/get-voters", Method: http.MethodGet, Description: "List voters page by page (requires auth)"},
}

func (s *Service) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, indexResponse{
		Name:      "Voter Roll API",
		Version:   s.config.Version,
		Endpoints: endpoints,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
