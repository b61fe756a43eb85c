package server

import (
	"fmt"
	stdmath "math"
	"net/http"
	"strconv"

	"github.com/df07/go-light2d/pkg/geometry"
	"github.com/df07/go-light2d/pkg/material"
	"github.com/df07/go-light2d/pkg/math"
	"github.com/df07/go-light2d/pkg/renderer"
	"github.com/df07/go-light2d/pkg/scene"
)

// InspectResponse represents the response from ray casting inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Origin       [2]float64             `json:"origin"` // World point of the pixel center
	Index        int                    `json:"index"`
	Name         string                 `json:"name,omitempty"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [2]float64             `json:"point"`
	Normal       [2]float64             `json:"normal"`
	Distance     float64                `json:"distance,omitempty"`
	FrontFace    bool                   `json:"frontFace,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

const degToRad = stdmath.Pi / 180

func colorArray(c math.Color) [3]float64 {
	return [3]float64{c.R, c.G, c.B}
}

func pointArray(p math.Vec2) [2]float64 {
	return [2]float64{p.X, p.Y}
}

// extractMaterialInfo extracts detailed material information
func (s *Server) extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Diffuse:
		properties["albedo"] = colorArray(m.Albedo)
		return "diffuse", properties

	case *material.Specular:
		properties["reflectivity"] = m.Reflectivity
		return "specular", properties

	case *material.Refractive:
		properties["ior"] = m.IOR
		properties["extinction"] = colorArray(m.Extinction)
		properties["fresnel"] = m.Fresnel
		return "refractive", properties

	case *material.Absorbing:
		properties["extinction"] = colorArray(m.Extinction)
		return "absorbing", properties

	case *material.Emissive:
		properties["radiance"] = colorArray(m.Radiance)
		return "emissive", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo extracts detailed geometry information
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Circle:
		properties["center"] = pointArray(geom.Center)
		properties["radius"] = geom.Radius
		return "circle", properties

	case *geometry.Segment:
		properties["a"] = pointArray(geom.A)
		properties["b"] = pointArray(geom.B)
		properties["length"] = geom.Length()
		return "segment", properties

	case *geometry.Polygon:
		vertices := make([][2]float64, len(geom.Vertices))
		for i, v := range geom.Vertices {
			vertices[i] = pointArray(v)
		}
		properties["vertices"] = vertices
		properties["perimeter"] = geom.Perimeter()
		properties["area"] = geom.Area()
		return "polygon", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray from the center of a pixel in the given direction and
// reports the first primitive it meets
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int, angle float64) (InspectResponse, geometry.Hit) {
	viewport := renderer.NewViewport(sceneObj.View, width, height)
	origin := viewport.PixelToWorld(pixelX, pixelY, math.NewVec2(0.5, 0.5))
	ray := math.NewRay(origin, math.FromAngle(angle))

	response := InspectResponse{Origin: pointArray(origin)}
	hit, index, ok := sceneObj.NearestHit(ray, -1)
	if !ok {
		return response, hit
	}
	response.Hit = true
	response.Index = index
	return response, hit
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	query := r.URL.Query()
	pixelX, err := strconv.Atoi(query.Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(query.Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}
	angle, err := parseFloatParam(query, "angle", 0, -360, 360)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sceneObj, err := s.createScene(inspectReq.Scene, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	response, hit := inspectPixel(sceneObj, inspectReq.Width, inspectReq.Height, pixelX, pixelY, angle*degToRad)
	if !response.Hit {
		writeJSON(w, http.StatusOK, response)
		return
	}

	entry := sceneObj.Entries[response.Index]
	materialType, materialProps := s.extractMaterialInfo(entry.Material)
	geometryType, geometryProps := s.extractGeometryInfo(entry.Shape)

	response.Name = entry.Name
	if response.Name == "" {
		response.Name = fmt.Sprintf("%s %d", geometryType, response.Index)
	}
	response.MaterialType = materialType
	response.GeometryType = geometryType
	response.Point = pointArray(hit.Point)
	response.Normal = pointArray(hit.Normal)
	response.Distance = hit.T
	response.FrontFace = hit.FrontFace
	response.Properties = map[string]interface{}{
		"material": materialProps,
		"geometry": geometryProps,
	}

	writeJSON(w, http.StatusOK, response)
}
