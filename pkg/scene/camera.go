package scene

import "github.com/df07/go-sparks-pathtracer/pkg/core"

// CameraParams places and configures the scene camera. The camera looks down
// its local -Z axis; Transform maps camera space to world space.
type CameraParams struct {
	Transform   core.Mat4
	FOV         float64 // vertical field of view in degrees
	Aperture    float64 // lens radius, 0 for a pinhole
	FocalLength float64 // distance to the plane in focus
	Shutter     float64 // rays sample time uniformly in [0, Shutter]
	Clamp       float64 // per-channel radiance ceiling
	Gamma       float64
}

// DefaultCameraParams returns a pinhole camera at the origin looking down -Z
func DefaultCameraParams() CameraParams {
	return CameraParams{
		Transform:   core.Identity(),
		FOV:         60,
		FocalLength: 3,
		Clamp:       100,
		Gamma:       2.2,
	}
}

// LookAtCamera returns default parameters for a camera at eye facing target
// with the focus plane through target
func LookAtCamera(eye, target, up core.Vec3, fov float64) CameraParams {
	params := DefaultCameraParams()
	params.Transform = core.LookAt(eye, target, up)
	params.FOV = fov
	params.FocalLength = eye.Distance(target)
	return params
}
