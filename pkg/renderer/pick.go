package renderer

import (
	"fmt"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/integrator"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// Pick traces the camera ray through the center of pixel (x, y) of a
// width x height image and returns the nearest hit. The ray leaves from the
// lens center so the answer does not depend on the aperture.
func Pick(s *scene.Scene, settings integrator.Settings, width, height, x, y int, time float64) (core.HitRecord, bool, error) {
	if x < 0 || x >= width || y < 0 || y >= height {
		return core.HitRecord{}, false, fmt.Errorf("%w: pixel (%d, %d) outside %dx%d", core.ErrIndexOutOfRange, x, y, width, height)
	}
	params := s.Camera
	params.Aperture = 0
	camera, err := NewCamera(params, width, height)
	if err != nil {
		return core.HitRecord{}, false, err
	}
	pt, err := integrator.NewPathTracer(s, settings, 0)
	if err != nil {
		return core.HitRecord{}, false, err
	}
	origin, direction, _ := camera.Ray(float64(x)+0.5, float64(y)+0.5, core.NewRNG(0))
	hit, ok := pt.TraceRay(origin, direction, time, scene.RayTMin, scene.RayTMax)
	return hit, ok, nil
}
