package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"taskfile/internal/config"
	"taskfile/internal/export"
	"taskfile/internal/taskfile"
	"taskfile/pkg/httperror"
	"taskfile/pkg/markdown"
	"taskfile/pkg/task"
)

//go:embed templates/*
var templatesFS embed.FS

type Server struct {
	dir         string
	maxBodySize int
	tmpl        *template.Template
}

func New(dir string, maxBodySize int) (*Server, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		dir:         dir,
		maxBodySize: maxBodySize,
		tmpl:        tmpl,
	}, nil
}

// handlerFunc is the signature of all handlers
type handlerFunc func(context.Context, *http.Request) ([]byte, error)

// wrapHandler adapts a handlerFunc to http.HandlerFunc
func (s *Server) wrapHandler(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h(r.Context(), r)
		if err != nil {
			var cte *contentTypeError
			if errors.As(err, &cte) {
				w.Header().Set("Content-Type", cte.contentType)
				_, _ = w.Write(cte.data)
				return
			}

			var he httperror.HTTPError
			if !errors.As(err, &he) {
				he = httperror.HTTPError{StatusCode: http.StatusInternalServerError, Message: err.Error()}
			}
			slog.Error("HTTP handler error",
				"method", r.Method,
				"path", r.URL.Path,
				"status", he.StatusCode,
				"error", he.Message)

			var buf bytes.Buffer
			title := http.StatusText(he.StatusCode)
			if title == "" {
				title = "Error"
			}
			err := s.tmpl.ExecuteTemplate(&buf, "error.html", map[string]any{
				"StatusCode": he.StatusCode,
				"Title":      title,
				"Message":    he.Message,
				"BasePath":   getBasePath(r),
			})
			if err != nil {
				// Fallback to plain text if template fails
				http.Error(w, he.Message, he.StatusCode)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(he.StatusCode)
			_, _ = w.Write(buf.Bytes())
			return
		}

		if len(data) > 0 {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(data)
		}
	}
}

// contentTypeError represents a response with a specific content type
type contentTypeError struct {
	contentType string
	data        []byte
}

func (e *contentTypeError) Error() string {
	return fmt.Sprintf("response with content-type: %s", e.contentType)
}

// loggingMiddleware logs each HTTP request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.wrapHandler(s.handleIndex))
	mux.HandleFunc("GET /tasks/{name}", s.wrapHandler(s.handleTask))
	mux.HandleFunc("GET /tasks/{name}/raw", s.wrapHandler(s.handleTaskRaw))
	mux.HandleFunc("GET /tasks/{name}/export", s.wrapHandler(s.handleTaskExport))

	return s.loggingMiddleware(mux)
}

// getBasePath honors a reverse proxy prefix and always ends in "/"
func getBasePath(r *http.Request) string {
	prefix := r.Header.Get("X-Forwarded-Prefix")
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

type indexEntry struct {
	Name  string
	Task  *task.Task
	Error string
}

func (s *Server) handleIndex(ctx context.Context, r *http.Request) ([]byte, error) {
	names, err := taskfile.List(s.dir)
	if err != nil {
		return nil, err
	}

	entries := make([]indexEntry, 0, len(names))
	for _, name := range names {
		t, err := s.loadTask(name)
		if err != nil {
			entries = append(entries, indexEntry{Name: name, Error: err.Error()})
			continue
		}
		entries = append(entries, indexEntry{Name: name, Task: t})
	}
	sortEntries(entries)

	var buf bytes.Buffer
	err = s.tmpl.ExecuteTemplate(&buf, "index.html", map[string]any{
		"Title":    "Tasks",
		"Dir":      s.dir,
		"Entries":  entries,
		"BasePath": getBasePath(r),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sortEntries orders tasks chronologically by their first bound. Unreadable
// files go last.
func sortEntries(entries []indexEntry) {
	key := func(e indexEntry) task.Timestamp {
		tf := e.Task.TimeFrame
		if tf.HasStart() {
			return tf.Start
		}
		return tf.End
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Task == nil || b.Task == nil {
			return a.Task != nil && b.Task == nil
		}
		if c := key(a).Compare(key(b)); c != 0 {
			return c < 0
		}
		return a.Name < b.Name
	})
}

func (s *Server) handleTask(ctx context.Context, r *http.Request) ([]byte, error) {
	name := r.PathValue("name")
	t, err := s.loadTask(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = s.tmpl.ExecuteTemplate(&buf, "task.html", map[string]any{
		"Title":    t.Title,
		"Name":     name,
		"HTML":     template.HTML(markdown.RenderTask(t)),
		"BasePath": getBasePath(r),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleTaskRaw(ctx context.Context, r *http.Request) ([]byte, error) {
	t, err := s.loadTask(r.PathValue("name"))
	if err != nil {
		return nil, err
	}
	data, err := task.Format(t)
	if err != nil {
		return nil, err
	}
	return nil, &contentTypeError{contentType: "text/plain; charset=utf-8", data: data}
}

func (s *Server) handleTaskExport(ctx context.Context, r *http.Request) ([]byte, error) {
	format := export.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = export.ParseFormat(f); err != nil {
			return nil, httperror.BadRequest("%v", err)
		}
	}

	t, err := s.loadTask(r.PathValue("name"))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Encode(&buf, t, format); err != nil {
		return nil, err
	}
	contentType := "application/json"
	if format == export.FormatYAML {
		contentType = "application/yaml"
	}
	return nil, &contentTypeError{contentType: contentType, data: buf.Bytes()}
}

// loadTask reads one task file from the served directory and maps failures
// to HTTP errors.
func (s *Server) loadTask(name string) (*task.Task, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, taskfile.Ext) {
		return nil, httperror.NotFound("no task named %q", name)
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, httperror.NotFound("no task named %q", name)
		}
		return nil, err
	}
	defer f.Close()

	dec := task.NewDecoder(f)
	dec.MaxBodySize = s.maxBodySize
	t, err := dec.Decode()
	switch {
	case errors.Is(err, task.ErrFormat):
		return nil, httperror.HTTPError{StatusCode: http.StatusUnprocessableEntity, Message: fmt.Sprintf("%s: %v", name, err)}
	case errors.Is(err, task.ErrBodyTooLarge):
		return nil, httperror.HTTPError{StatusCode: http.StatusRequestEntityTooLarge, Message: fmt.Sprintf("%s: %v", name, err)}
	case err != nil:
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "url", "http://"+addr, "dir", s.dir)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Run starts the server with the given configuration
func Run(cfg *config.Config) error {
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return fmt.Errorf("task directory %q: %w", cfg.Dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("task directory %q is not a directory", cfg.Dir)
	}

	srv, err := New(cfg.Dir, cfg.MaxBodySize)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	addr := fmt.Sprintf("localhost:%s", cfg.Port)
	return srv.Start(addr)
}
