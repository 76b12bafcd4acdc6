package server

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/df07/go-sparks-pathtracer/pkg/config"
	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	base := config.Default()
	base.Render.Width, base.Render.Height = 40, 40
	base.Render.TileSize = 8
	base.Render.Workers = 2
	ts := httptest.NewServer(NewServer(0, base, core.NopLogger{}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

type sseEvent struct {
	event, data string
}

// readEvents reads the whole event stream
func readEvents(t *testing.T, body io.Reader) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if current.event != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("read events: %v", err)
	}
	return events
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	if status := getJSON(t, ts.URL+"/api/health", &body); status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health returned %d %v", status, body)
	}
}

func TestScenes(t *testing.T) {
	ts := newTestServer(t)
	var scenes []SceneInfo
	if status := getJSON(t, ts.URL+"/api/scenes", &scenes); status != http.StatusOK {
		t.Fatalf("scenes returned %d", status)
	}
	found := false
	for _, s := range scenes {
		if s.Name == "cornell" {
			found = true
			if s.Entities == 0 || s.Faces == 0 || s.Lights == 0 {
				t.Errorf("cornell looks empty: %+v", s)
			}
		}
	}
	if !found {
		t.Errorf("cornell missing from %+v", scenes)
	}
}

func TestInspect(t *testing.T) {
	ts := newTestServer(t)

	var hit InspectResponse
	if status := getJSON(t, ts.URL+"/api/inspect?scene=cornell&x=20&y=38", &hit); status != http.StatusOK {
		t.Fatalf("inspect returned %d", status)
	}
	if !hit.Hit || hit.Entity != "floor" || hit.MaterialType != "lambertian" {
		t.Errorf("expected the lambertian floor, got %+v", hit)
	}
	if hit.Distance <= 0 || hit.Light {
		t.Errorf("bad floor hit %+v", hit)
	}

	tests := []struct {
		name  string
		query string
	}{
		{"outside the image", "x=40&y=0"},
		{"missing x", "y=3"},
		{"bad time", "x=1&y=1&time=soon"},
		{"unknown scene", "scene=nonexistent&x=1&y=1"},
		{"image too small", "width=2&x=1&y=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			if status := getJSON(t, ts.URL+"/api/inspect?"+tt.query, &body); status != http.StatusBadRequest || body["error"] == "" {
				t.Errorf("expected a 400 with an error, got %d %v", status, body)
			}
		})
	}
}

func TestRenderStream(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/render?scene=spheres&width=16&height=16&maxSamples=2&maxPasses=2&seed=3")
	if err != nil {
		t.Fatalf("GET render: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}

	events := readEvents(t, resp.Body)
	counts := map[string]int{}
	var passes []PassUpdate
	for _, e := range events {
		counts[e.event]++
		switch e.event {
		case "passComplete":
			var p PassUpdate
			if err := json.Unmarshal([]byte(e.data), &p); err != nil {
				t.Fatalf("decode pass: %v", err)
			}
			passes = append(passes, p)
		case "tile":
			var tile TileUpdate
			if err := json.Unmarshal([]byte(e.data), &tile); err != nil {
				t.Fatalf("decode tile: %v", err)
			}
			if tile.TotalTiles != 4 || tile.ImageData == "" {
				t.Errorf("bad tile %+v", tile)
			}
		case "error":
			t.Fatalf("render error: %s", e.data)
		}
	}

	if counts["tile"] != 8 {
		t.Errorf("expected 4 tiles in each of 2 passes, got %d", counts["tile"])
	}
	if len(passes) != 2 || passes[0].MinSamples != 1 || passes[1].MinSamples != 2 || !passes[1].IsLast {
		t.Errorf("unexpected passes %+v", passes)
	}
	if counts["console"] == 0 {
		t.Error("expected console lines from the render")
	}
	if len(events) == 0 || events[len(events)-1].event != "complete" {
		t.Errorf("stream should end with complete, got %d events", len(events))
	}
}

func TestRenderRejectsBadParameters(t *testing.T) {
	ts := newTestServer(t)
	for _, query := range []string{"maxSamples=0", "maxPasses=x", "width=5000", "seed=-1", "scene=nonexistent"} {
		var body map[string]string
		if status := getJSON(t, ts.URL+"/api/render?"+query, &body); status != http.StatusBadRequest || body["error"] == "" {
			t.Errorf("%s: expected a 400 with an error, got %d %v", query, status, body)
		}
	}
}
