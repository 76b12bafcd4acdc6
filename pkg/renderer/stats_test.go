package renderer

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

func TestCalculateAverageLuminance(t *testing.T) {
	// Create a 2x2 image
	// Top-left: Red (1, 0, 0) -> Lum = 0.2126
	// Top-right: Green (0, 1, 0) -> Lum = 0.7152
	// Bottom-left: Blue (0, 0, 1) -> Lum = 0.0722
	// Bottom-right: Black (0, 0, 0) -> Lum = 0.0

	// Expected average: (0.2126 + 0.7152 + 0.0722 + 0.0) / 4 = 1.0 / 4 = 0.25

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 0.25
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	// 1x1 White pixel -> Lum = 1.0
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{255, 255, 255, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 1.0
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestPixelStatsAverage(t *testing.T) {
	var ps PixelStats
	if got := ps.GetColor(); !got.IsZero() {
		t.Errorf("empty pixel should be black, got %v", got)
	}
	ps.AddSample(core.NewVec3(1, 0, 0))
	ps.AddSample(core.NewVec3(0, 1, 0.5))
	if got, expected := ps.GetColor(), core.NewVec3(0.5, 0.5, 0.25); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}
	if ps.SampleCount != 2 {
		t.Errorf("expected 2 samples, got %d", ps.SampleCount)
	}
}

func TestReportTable(t *testing.T) {
	report := Report{
		JobID: uuid.New(),
		Passes: []PassSummary{
			{Pass: 1, Samples: 1, Duration: time.Second, Rays: 2_000_000},
			{Pass: 2, Samples: 8, Duration: 3 * time.Second, Rays: 14_000_000},
		},
		Stats: RenderStats{AverageSamples: 8, Rays: 16_000_000},
	}
	table := report.Table()
	for _, want := range []string{"Samples/pixel", "14000000", "TOTAL", "4.00", "8.0 avg"} {
		if !strings.Contains(table, want) {
			t.Errorf("table is missing %q:\n%s", want, table)
		}
	}
}
