package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"voterroll/internal/auth"
	"voterroll/pkg/types"

	"github.com/NYTimes/gziphandler"
	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Uploader interface {
	Run(ctx context.Context, src io.Reader) (*types.UploadOutcome, error)
}

type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) (*types.SearchResult, error)
	List(ctx context.Context, page, limit int) (*types.SearchResult, error)
}

type VoterReader interface {
	VoterByID(ctx context.Context, id int64) (*types.Voter, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
	VoterTableExists(ctx context.Context) (bool, error)
	CountVoters(ctx context.Context, filter types.VoterFilter) (int, error)
}

type SystemGate interface {
	IsEnabled(ctx context.Context) bool
}

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	uploader Uploader
	searcher Searcher
	voters   VoterReader
	health   HealthChecker
	gate     SystemGate
	verifier TokenVerifier

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	uploader Uploader,
	searcher Searcher,
	voters VoterReader,
	health HealthChecker,
	gate SystemGate,
	verifier TokenVerifier,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		uploader: uploader,
		searcher: searcher,
		voters:   voters,
		health:   health,
		gate:     gate,
		verifier: verifier,
	}

	searchLimit, err := s.newRateLimit(config.SearchRateLimit)
	if err != nil {
		return nil, err
	}

	s.buildRouter(mux, searchLimit)

	s.handler = cors.New(cors.Options{
		AllowedOrigins: []string{config.CORSOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.ServerPort),
		Handler:           s.handler,
		ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux, searchLimit func(http.Handler) http.Handler) {
	r.NotFound = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowed = http.HandlerFunc(s.handleMethodNotAllowed)

	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.Group(func(r *flow.Mux) {
		// admin uploads stay unwrapped so they can extend their own deadlines
		r.Use(gziphandler.GzipHandler)

		r.HandleFunc("/health", s.handleHealth, http.MethodGet)
		r.HandleFunc("/api/health", s.handleHealth, http.MethodGet)
		r.HandleFunc("/api", s.handleIndex, http.MethodGet)
		r.Handle("/metrics", promhttp.Handler(), http.MethodGet)

		r.HandleFunc("/api/download-pdf/:id", s.handleDownloadPDF, http.MethodGet)
		r.HandleFunc("/api/share/:id", s.handleShareImage, http.MethodGet)
		r.HandleFunc("/api/poster", s.handlePoster, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(searchLimit)

			r.HandleFunc("/api/search", s.handleSearch, http.MethodGet, http.MethodPost)
		})

		if s.config.PosterPath != "" {
			imagesRoot := filepath.Dir(s.config.PosterPath)
			r.Handle("/images/...", http.StripPrefix("/images/", http.FileServer(http.Dir(imagesRoot))), http.MethodGet)
		}
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireSystemEnabled)
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/admin/upload-csv", s.handleUploadCSV, http.MethodPost)
		r.HandleFunc("/api/admin/get-voters", s.handleGetVoters, http.MethodGet)
	})
}
