package httpx

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"yatube/internal/auth"
	"yatube/internal/db"
)

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	data.Viewer, _ = auth.IdentityFrom(r.Context())
	data.Path = r.URL.Path
	if err := s.views.Render(w, status, name, data); err != nil {
		s.serverError(w, r, err)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "404.html", pageData{Title: "Not found"})
}

// serverError logs err and answers with the 500 page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("server error")
	s.renderServerError(w, r)
}

func (s *Server) renderServerError(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Server error", Path: r.URL.Path}
	data.Viewer, _ = auth.IdentityFrom(r.Context())
	if err := s.views.Render(w, http.StatusInternalServerError, "500.html", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// fail maps a lookup error to 404 when nothing was found, 500 otherwise.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, db.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	s.serverError(w, r, err)
}
