package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-sparks-pathtracer/pkg/config"
	"github.com/df07/go-sparks-pathtracer/pkg/integrator"
	"github.com/df07/go-sparks-pathtracer/pkg/renderer"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent when every tile of a pass is done
type PassUpdate struct {
	RenderID       string  `json:"renderId"`
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	Rays           uint64  `json:"rays"`
	IsLast         bool    `json:"isLast"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string // "console", "tile", "passComplete", "error", "complete"
	Data string // JSON-encoded data
}

// renderPipeline contains the configured scene and renderer
type renderPipeline struct {
	id       uuid.UUID
	scene    *scene.Scene
	renderer *renderer.ProgressiveRenderer
	passes   int
}

// handleRender handles progressive rendering with real-time tile streaming via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	id := uuid.New()
	consoleChan := make(chan ConsoleMessage, 50)
	webLogger := NewWebLogger(id.String(), s.logger, consoleChan)
	pipeline, err := setupRenderPipeline(id, cfg, webLogger)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	setSSEHeaders(w)
	ctx := r.Context()

	// A single writer goroutine owns w; done closes once it has returned
	sseEventChan := make(chan SSEEvent, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-done
	}()

	startTime := time.Now()
	passChan, tileChan, errChan := pipeline.renderer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})
	s.handleRenderingEvents(ctx, sseEventChan, consoleChan, pipeline, passChan, tileChan, errChan, startTime)
}

// parseRenderRequest applies the query parameters to a copy of the base config
func (s *Server) parseRenderRequest(r *http.Request) (config.Config, error) {
	cfg := s.base
	values := r.URL.Query()
	if err := s.parseCommonSceneParams(values, &cfg); err != nil {
		return cfg, err
	}
	var err error
	if cfg.Render.Samples, err = parseIntParam(values, "maxSamples", cfg.Render.Samples, 1, MaxSamples); err != nil {
		return cfg, err
	}
	if cfg.Render.Passes, err = parseIntParam(values, "maxPasses", cfg.Render.Passes, 1, MaxPasses); err != nil {
		return cfg, err
	}
	seed, err := parseIntParam(values, "seed", int(cfg.Render.Seed), 0, 1<<31-1)
	if err != nil {
		return cfg, err
	}
	cfg.Render.Seed = uint64(seed)
	return cfg, cfg.Validate()
}

// setupRenderPipeline builds the scene and the progressive renderer
func setupRenderPipeline(id uuid.UUID, cfg config.Config, logger *WebLogger) (*renderPipeline, error) {
	sc, err := cfg.BuildScene()
	if err != nil {
		return nil, err
	}
	sc.LogSummary(logger)

	camera, err := renderer.NewCamera(sc.Camera, cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		return nil, err
	}
	factory := integrator.NewPathTracerFactory(sc, cfg.IntegratorSettings())
	pr, err := renderer.NewProgressiveRenderer(camera, factory, cfg.ProgressiveConfig(), logger)
	if err != nil {
		return nil, err
	}
	logger.Infof("render %s: scene %s at %dx%d, %d spp in %d passes on %d workers",
		id, sc.Name, cfg.Render.Width, cfg.Render.Height, cfg.Render.Samples, cfg.Render.Passes, pr.Workers())
	return &renderPipeline{id: id, scene: sc, renderer: pr, passes: cfg.Render.Passes}, nil
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents handles writing all SSE events in a single goroutine
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleRenderingEvents forwards passes, tiles and console lines until the
// render ends or the client goes away
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent, consoleChan <-chan ConsoleMessage,
	pipeline *renderPipeline, passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	startTime time.Time) {

	for passChan != nil || tileChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			sendJSON(ctx, sseEventChan, "passComplete", PassUpdate{
				RenderID:       pipeline.id.String(),
				PassNumber:     passResult.PassNumber,
				TotalPasses:    pipeline.passes,
				ElapsedMs:      time.Since(startTime).Milliseconds(),
				TotalPixels:    passResult.Stats.TotalPixels,
				TotalSamples:   passResult.Stats.TotalSamples,
				AverageSamples: passResult.Stats.AverageSamples,
				MinSamples:     passResult.Stats.MinSamples,
				MaxSamplesUsed: passResult.Stats.MaxSamplesUsed,
				Rays:           passResult.Stats.Rays,
				IsLast:         passResult.IsLast,
			})

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case msg := <-consoleChan:
			sendJSON(ctx, sseEventChan, "console", msg)

		case <-ctx.Done():
			return
		}
	}

	drainConsole(ctx, consoleChan, sseEventChan)
	if err := <-errChan; err != nil {
		sendEvent(ctx, sseEventChan, "error", fmt.Sprintf("Rendering failed: %v", err))
		return
	}
	sendEvent(ctx, sseEventChan, "complete", "Rendering completed")
}

// handleTileUpdate encodes a finished tile and queues it
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tileResult renderer.TileCompletionResult) {
	tileData, err := imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		s.logger.Errorf("encode tile (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}
	sendJSON(ctx, sseEventChan, "tile", TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	})
}

// drainConsole forwards console lines that are already queued
func drainConsole(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for {
		select {
		case msg := <-consoleChan:
			sendJSON(ctx, sseEventChan, "console", msg)
		default:
			return
		}
	}
}

func sendJSON(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		sendEvent(ctx, sseEventChan, "error", err.Error())
		return
	}
	sendEvent(ctx, sseEventChan, eventType, string(data))
}

func sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType, data string) {
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: data}:
	case <-ctx.Done():
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
