package renderer

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MinSamples     int     // Minimum samples taken by any pixel
	MaxSamplesUsed int     // Maximum samples taken by any pixel
	Rays           uint64  // Scene rays traced by the integrators
}

// PixelStats accumulates the running average for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3
	SampleCount int
}

// AddSample adds a new radiance estimate to the pixel
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// PassSummary records one finished progressive pass
type PassSummary struct {
	Pass     int
	Samples  int // samples per pixel after the pass
	Duration time.Duration
	Rays     uint64
}

// Report describes a finished render job
type Report struct {
	JobID   uuid.UUID
	Scene   string
	Width   int
	Height  int
	Workers int
	Passes  []PassSummary
	Stats   RenderStats
	Output  string
}

// Table formats the report as a text table, one row per pass
func (r Report) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Samples/pixel", "Rays", "Mrays/s", "Time"})

	var total time.Duration
	for _, p := range r.Passes {
		total += p.Duration
		table.Append([]string{
			fmt.Sprintf("%d", p.Pass),
			fmt.Sprintf("%d", p.Samples),
			fmt.Sprintf("%d", p.Rays),
			fmt.Sprintf("%.2f", megaRaysPerSecond(p.Rays, p.Duration)),
			p.Duration.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%.1f avg", r.Stats.AverageSamples),
		fmt.Sprintf("%d", r.Stats.Rays),
		fmt.Sprintf("%.2f", megaRaysPerSecond(r.Stats.Rays, total)),
		total.Round(time.Millisecond).String(),
	})
	table.Render()
	return buf.String()
}

func megaRaysPerSecond(rays uint64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(rays) / d.Seconds() / 1e6
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of img with
// channels mapped to [0, 1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}
	sum := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := core.NewVec3(float64(r), float64(g), float64(b)).Multiply(1.0 / 0xffff)
			sum += c.Luminance()
		}
	}
	return sum / float64(pixels)
}
