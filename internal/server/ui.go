package server

import (
	"net/http"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/render"
	"github.com/jmylchreest/toastui/internal/surface"
	"github.com/jmylchreest/toastui/internal/theme"
)

func (s *Server) css() string {
	if s.themes == nil {
		return ""
	}
	return s.themes.CSS()
}

func (s *Server) uiPage(w http.ResponseWriter, r *http.Request) {
	opts := render.PageOptions{
		RootClass:  theme.PageClass(config.ColorScheme(s.currentConfig().Theme.ColorScheme)),
		CSS:        s.css(),
		StreamPath: PathStream,
		APIPath:    PathToasts,
	}

	// Rendering happens under the center lock so the page never shows a
	// half-applied transition.
	s.center.EnsureSurface()
	var err error
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.center.View(func(doc *surface.Document) {
		err = render.Page(w, doc, opts)
	})
	if err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) uiSurface(w http.ResponseWriter, r *http.Request) {
	el := s.center.EnsureSurface()

	var (
		out string
		err error
	)
	s.center.View(func(*surface.Document) {
		out, err = render.ElementHTML(el)
	})
	if err != nil {
		s.logger.Error("render surface failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func (s *Server) uiTheme(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(s.css()))
}
