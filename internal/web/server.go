package web

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/vbonduro/nutribot/internal/catalog"
	"github.com/vbonduro/nutribot/internal/chat"
	"github.com/vbonduro/nutribot/internal/domain"
	"github.com/vbonduro/nutribot/internal/feedback"
	"github.com/vbonduro/nutribot/internal/mcp"
	"github.com/vbonduro/nutribot/internal/recommend"
	"github.com/vbonduro/nutribot/internal/service"
)

// Deps are the collaborators a Server needs. Sink may be nil, in which case the
// built-in feedback endpoint is not mounted.
type Deps struct {
	Engine     *recommend.Engine
	Feedback   *feedback.Client
	Sink       *service.FeedbackService
	Templates  fs.FS
	ThinkDelay time.Duration
}

type Server struct {
	engine     *recommend.Engine
	catalog    *catalog.Catalog
	feedback   *feedback.Client
	sink       *service.FeedbackService
	templates  fs.FS
	thinkDelay time.Duration
	mux        *http.ServeMux
	handler    http.Handler
	tmplFuncs  template.FuncMap
	logger     *slog.Logger
}

func NewServer(deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		engine:     deps.Engine,
		catalog:    deps.Engine.Catalog(),
		feedback:   deps.Feedback,
		sink:       deps.Sink,
		templates:  deps.Templates,
		thinkDelay: deps.ThinkDelay,
		mux:        http.NewServeMux(),
		logger:     logger,
		tmplFuncs: template.FuncMap{
			"join": strings.Join,
		},
	}
	s.registerRoutes()
	s.handler = middleware.RequestID(requestLogger(logger, middleware.Recoverer(securityHeaders(s.mux))))
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	if static, err := fs.Sub(s.templates, "static"); err == nil {
		s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	}
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("POST /feedback", s.handleFeedback)
	s.mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	s.mux.HandleFunc("POST /api/recommend", s.handleRecommend)
	s.mux.Handle("POST /mcp", mcp.NewHandler(s.engine, s.catalog, s.logger))

	if s.sink != nil {
		s.mux.HandleFunc("POST /api/feedback", s.handleSinkRecord)
		s.mux.HandleFunc("GET /api/feedback/summary", s.handleSinkSummary)
		s.mux.HandleFunc("GET /api/feedback/export", s.handleSinkExport)
	}
}

// securityHeaders sets the browser hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// HTTPServer returns an *http.Server for addr. Callers own its lifecycle.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}

// renderPartial parses and executes a single named partial template.
// The file must contain exactly one {{define "name"}}...{{end}} block.
func (s *Server) renderPartial(w http.ResponseWriter, file string, data any) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, file)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	basename := file
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		basename = file[idx+1:]
	}
	for _, t := range tmpl.Templates() {
		if n := t.Name(); n != "" && n != basename {
			return t.Execute(w, data)
		}
	}
	return tmpl.ExecuteTemplate(w, basename, data)
}

type indexPage struct {
	Title    string
	Snacks   []domain.Snack
	Stars    []int
	Examples []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexPage{
		Title:    "NutriBot",
		Snacks:   s.catalog.All(),
		Stars:    []int{1, 2, 3, 4, 5},
		Examples: chat.HelpExamples,
	}
	if err := s.renderPage(w, data, "base.html", "pages/index.html"); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
