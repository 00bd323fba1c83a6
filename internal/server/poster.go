package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type posterResponse struct {
	Success   bool    `json:"success"`
	Exists    bool    `json:"exists"`
	URL       *string `json:"url"`
	Extension *string `json:"extension"`
}

func (s *Service) handlePoster(w http.ResponseWriter, r *http.Request) {
	out := posterResponse{Success: true}

	if path := s.config.PosterPath; path != "" {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			url := "/images/" + filepath.Base(path)
			ext := strings.TrimPrefix(filepath.Ext(path), ".")

			out.Exists = true
			out.URL = &url
			out.Extension = &ext
		}
	}

	s.writeJSON(w, http.StatusOK, out)
}
