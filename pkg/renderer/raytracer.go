package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/integrator"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// Job describes one render of a frozen scene
type Job struct {
	Scene       *scene.Scene
	Width       int
	Height      int
	Progressive ProgressiveConfig
	Integrator  integrator.Settings
	OutputDir   string // empty skips writing the image
}

// Render runs every pass of the job, writes the final image to
// <OutputDir>/<scene>/render_<job id>.png and returns the job report.
// onPass, if set, is called after each pass.
func Render(ctx context.Context, job Job, logger core.Logger, onPass func(PassResult)) (Report, error) {
	report := Report{
		JobID:  uuid.New(),
		Scene:  job.Scene.Name,
		Width:  job.Width,
		Height: job.Height,
	}

	if err := job.Integrator.Validate(); err != nil {
		return report, err
	}
	camera, err := NewCamera(job.Scene.Camera, job.Width, job.Height)
	if err != nil {
		return report, err
	}
	pr, err := NewProgressiveRenderer(camera, integrator.NewPathTracerFactory(job.Scene, job.Integrator), job.Progressive, logger)
	if err != nil {
		return report, err
	}
	report.Workers = pr.Workers()

	logger.Infof("render %s: scene %s at %dx%d, %d spp in %d passes on %d workers",
		report.JobID, report.Scene, job.Width, job.Height, job.Progressive.MaxSamplesPerPixel, job.Progressive.MaxPasses, report.Workers)

	passes, _, errs := pr.RenderProgressive(ctx, RenderOptions{})
	var final *image.RGBA
	for pass := range passes {
		final = pass.Image
		totalRays := report.Stats.Rays + pass.Stats.Rays
		report.Stats = pass.Stats
		report.Stats.Rays = totalRays
		report.Passes = append(report.Passes, PassSummary{
			Pass:     pass.PassNumber,
			Samples:  pass.Stats.MinSamples,
			Duration: pass.Duration,
			Rays:     pass.Stats.Rays,
		})
		if onPass != nil {
			onPass(pass)
		}
	}
	if err := <-errs; err != nil {
		return report, err
	}
	if final == nil || job.OutputDir == "" {
		return report, nil
	}

	report.Output = filepath.Join(job.OutputDir, job.Scene.Name, fmt.Sprintf("render_%s.png", report.JobID))
	if err := WritePNG(report.Output, final); err != nil {
		return report, err
	}
	logger.Infof("wrote %s", report.Output)
	return report, nil
}

// WritePNG encodes img to path, creating parent directories
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// vec3ToColor converts a linear color to RGBA with gamma correction and clamping
func vec3ToColor(colorVec core.Vec3, gamma float64) color.RGBA {
	colorVec = colorVec.Clamp(0, 1).GammaCorrect(gamma)
	return color.RGBA{
		R: uint8(255*colorVec.X + 0.5),
		G: uint8(255*colorVec.Y + 0.5),
		B: uint8(255*colorVec.Z + 0.5),
		A: 255,
	}
}
