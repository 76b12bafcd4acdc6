package renderer

import (
	"image"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/integrator"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, &Tile{ID: len(tiles), Bounds: image.Rect(x0, y0, x1, y1)})
		}
	}
	return tiles
}

// rayCounter is implemented by integrators that count traced rays
type rayCounter interface {
	RayCount() uint64
}

// TileRenderer renders tiles with one integrator and one camera sampler.
// It is owned by a single worker.
type TileRenderer struct {
	camera     *Camera
	integrator integrator.Integrator
	sampler    *core.RNG
}

// NewTileRenderer creates a tile renderer around an integrator
func NewTileRenderer(camera *Camera, integ integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		integrator: integ,
		sampler:    core.NewRNG(0),
	}
}

// RenderTileBounds brings every pixel inside bounds up to targetSamples.
// The random streams restart from seed so a tile pass renders the same
// regardless of which worker picks it up.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, targetSamples int, seed uint64) RenderStats {
	tr.integrator.SetSeed(seed)
	tr.sampler.Seed(mixSeed(seed, 0x9e3779b97f4a7c15))

	var raysBefore uint64
	counter, counts := tr.integrator.(rayCounter)
	if counts {
		raysBefore = counter.RayCount()
	}

	stats := RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MinSamples:  targetSamples,
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ps := &pixelStats[y][x]
			taken := 0
			for ps.SampleCount < targetSamples {
				origin, direction, time := tr.camera.PixelRay(x, y, tr.sampler)
				ps.AddSample(tr.integrator.SampleRayPathTrace(origin, direction, time))
				taken++
			}
			stats.TotalSamples += taken
			stats.MinSamples = min(stats.MinSamples, taken)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, taken)
		}
	}
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
	if counts {
		stats.Rays = counter.RayCount() - raysBefore
	}
	return stats
}

// mixSeed derives a decorrelated seed with the splitmix64 finalizer
func mixSeed(a, b uint64) uint64 {
	z := a + b*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// tileSeed returns the random seed for one tile in one pass
func tileSeed(base uint64, tileID, pass int) uint64 {
	return mixSeed(mixSeed(base, uint64(tileID)+1), uint64(pass))
}
