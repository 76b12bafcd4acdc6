// Package server streams progressive renders and pixel inspection over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-sparks-pathtracer/pkg/config"
	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// Request limits
const (
	MinImageSize = 8
	MaxImageSize = 2000
	MaxSamples   = 10000
	MaxPasses    = 1000
)

// Server handles web requests for the path tracer. Every request starts
// from a copy of the base configuration.
type Server struct {
	port   int
	base   config.Config
	logger core.Logger
}

// NewServer creates a new web server
func NewServer(port int, base config.Config, logger core.Logger) *Server {
	return &Server{port: port, base: base, logger: logger}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on http://localhost%s", srv.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SceneInfo describes one built-in scene
type SceneInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Entities    int    `json:"entities"`
	Faces       int    `json:"faces"`
	BVHNodes    int    `json:"bvhNodes"`
	Lights      int    `json:"lights"`
}

// handleScenes lists the built-in scenes with their sizes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	var scenes []SceneInfo
	for _, b := range scene.Builtins() {
		sc, err := scene.Build(b.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		st := sc.Stats()
		scenes = append(scenes, SceneInfo{
			Name:        b.Name,
			Description: b.Description,
			Entities:    st.Entities,
			Faces:       st.Faces,
			BVHNodes:    st.BVHNodes,
			Lights:      st.Lights,
		})
	}
	writeJSON(w, http.StatusOK, scenes)
}

// parseCommonSceneParams applies the scene and image size parameters shared
// by render and inspect requests
func (s *Server) parseCommonSceneParams(values url.Values, cfg *config.Config) error {
	if name := values.Get("scene"); name != "" {
		cfg.Scene = name
	}
	var err error
	if cfg.Render.Width, err = parseIntParam(values, "width", cfg.Render.Width, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	if cfg.Render.Height, err = parseIntParam(values, "height", cfg.Render.Height, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %s", core.ErrInvalidConfig, key, value)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%w: %s must be between %d and %d, got: %d", core.ErrInvalidConfig, key, min, max, parsed)
	}
	return parsed, nil
}

// statusFor maps build and request errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidConfig), errors.Is(err, core.ErrUnknownScene), errors.Is(err, core.ErrIndexOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
