// Package httpapi exposes the tool catalog as one HTTP endpoint per tool.
//
// Requests go through the same dispatcher as the MCP channel. The only
// difference is presentation: a successful call returns the result text as
// {"content": ...} and a failed one returns {"error": ...} with a status
// code chosen from the failure kind.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jpl-au/hubtools/internal/dispatch"
	"github.com/jpl-au/hubtools/internal/tool"
	"github.com/jpl-au/hubtools/internal/validate"
)

// Transport is the request transport name recorded for HTTP calls.
const Transport = "http"

// maxBody bounds the size of a tool call's JSON body.
const maxBody = 1 << 20

// Config holds the HTTP surface settings.
type Config struct {
	// Token, when set, must be presented as "Authorization: Bearer <token>"
	// on every /tools route. /health is always open.
	Token  string
	Logger *slog.Logger
}

// Server routes HTTP requests to the dispatcher.
type Server struct {
	d      *dispatch.Dispatcher
	cfg    Config
	router *chi.Mux
}

// New constructs a Server with middleware and routes configured.
func New(d *dispatch.Dispatcher, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{d: d, cfg: cfg, router: chi.NewRouter()}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/tools", func(r chi.Router) {
		r.Use(s.auth)
		r.Get("/", s.handleListTools)
		r.Post("/{name}", s.handleCall)
	})

	return s
}

// Handler exposes the root HTTP handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.cfg.Logger.Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.d.Registry().List()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	args, err := decodeArgs(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	// Missing fields are answered here, before dispatch.
	if desc, ok := s.d.Registry().Lookup(name); ok {
		var te *tool.Error
		if err := validate.Required(desc, args); errors.As(err, &te) {
			writeError(w, http.StatusBadRequest, "Missing "+te.Field)
			return
		}
	}

	res := s.d.Dispatch(r.Context(), tool.Request{
		Tool:      name,
		Arguments: args,
		ID:        middleware.GetReqID(r.Context()),
		Transport: Transport,
	})
	if res.IsError {
		writeError(w, StatusFor(res.Err), res.String())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": res.String()})
}

// decodeArgs reads a JSON object body. An empty body is no arguments.
func decodeArgs(body io.Reader) (tool.Args, error) {
	args := tool.Args{}
	err := json.NewDecoder(io.LimitReader(body, maxBody)).Decode(&args)
	if errors.Is(err, io.EOF) {
		return tool.Args{}, nil
	}
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = tool.Args{}
	}
	return args, nil
}

// StatusFor maps a failure kind to an HTTP status code.
func StatusFor(err *tool.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Kind {
	case tool.KindUnknownTool:
		return http.StatusNotFound
	case tool.KindMissingArgument:
		return http.StatusBadRequest
	case tool.KindBusy:
		return http.StatusConflict
	case tool.KindRemoteDetail:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
