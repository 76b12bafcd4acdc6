package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
	"github.com/df07/go-sparks-pathtracer/pkg/integrator"
	"github.com/df07/go-sparks-pathtracer/pkg/material"
	"github.com/df07/go-sparks-pathtracer/pkg/renderer"
	"github.com/df07/go-sparks-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Entity       string                 `json:"entity,omitempty"`
	EntityID     string                 `json:"entityId,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	TexCoord     [2]float64             `json:"texCoord"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Light        bool                   `json:"light"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// inspectConfig is the part of a request needed to pick a pixel
type inspectConfig struct {
	settings      integrator.Settings
	width, height int
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo lists the parameters that matter for the material type
func extractMaterialInfo(mat material.Material) map[string]interface{} {
	properties := map[string]interface{}{
		"albedoTexture": mat.AlbedoTexture,
		"normalTexture": mat.NormalTexture,
	}
	switch mat.Type {
	case material.Lambertian, material.Specular:
		properties["albedo"] = vec3Array(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
	case material.Transmissive:
		properties["albedo"] = vec3Array(mat.Albedo)
		properties["ior"] = mat.IOR
	case material.Principled:
		properties["albedo"] = vec3Array(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
		properties["ior"] = mat.IOR
		properties["metallic"] = mat.Metallic
		properties["roughness"] = mat.Roughness
		properties["specTrans"] = mat.SpecTrans
		properties["diffTrans"] = mat.DiffTrans
		properties["flatness"] = mat.Flatness
		properties["thin"] = mat.Thin
	case material.Emission:
		properties["emission"] = vec3Array(mat.Emission)
		properties["strength"] = mat.EmissionStrength
		properties["color"] = hexColor(mat.Emission)
	}
	return properties
}

// inspectPixel describes the nearest surface under pixel (x, y)
func inspectPixel(sc *scene.Scene, cfg inspectConfig, x, y int, time float64) (InspectResponse, error) {
	hit, ok, err := renderer.Pick(sc, cfg.settings, cfg.width, cfg.height, x, y, time)
	if err != nil || !ok {
		return InspectResponse{Hit: false}, err
	}
	e := sc.Entity(hit.EntityID)
	_, isLight := sc.LightForEntity(hit.EntityID)
	bounds := e.WorldBounds(time)
	return InspectResponse{
		Hit:          true,
		Entity:       e.Name,
		EntityID:     e.ID.String(),
		MaterialType: e.Material.Type.String(),
		Point:        vec3Array(hit.Position),
		Normal:       vec3Array(hit.Normal),
		TexCoord:     [2]float64{hit.TexCoord.X, hit.TexCoord.Y},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Light:        isLight,
		Properties: map[string]interface{}{
			"material": extractMaterialInfo(e.Material),
			"geometry": map[string]interface{}{
				"faces":    e.Mesh.FaceCount(),
				"velocity": vec3Array(e.Velocity),
				"boundingBox": map[string]interface{}{
					"min": vec3Array(bounds.Min),
					"max": vec3Array(bounds.Max),
				},
			},
		},
	}, nil
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	cfg := s.base
	values := r.URL.Query()
	if err := s.parseCommonSceneParams(values, &cfg); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	x, err := strconv.Atoi(values.Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid x coordinate %q", values.Get("x")))
		return
	}
	y, err := strconv.Atoi(values.Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid y coordinate %q", values.Get("y")))
		return
	}
	var time float64
	if v := values.Get("time"); v != "" {
		if time, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid time %q", v))
			return
		}
	}

	sc, err := cfg.BuildScene()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	response, err := inspectPixel(sc, inspectConfig{
		settings: cfg.IntegratorSettings(),
		width:    cfg.Render.Width,
		height:   cfg.Render.Height,
	}, x, y, time)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}
