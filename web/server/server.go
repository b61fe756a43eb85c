package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/df07/go-light2d/pkg/core"
	"github.com/df07/go-light2d/pkg/loaders"
	"github.com/df07/go-light2d/pkg/scene"
)

// DefaultTileSize is the tile edge used for web renders
const DefaultTileSize = 32

// Server handles web requests for the progressive 2D renderer
type Server struct {
	port      int
	staticDir string
	sceneDir  string
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port, staticDir: "static", sceneDir: "scenes"}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene             string  `json:"scene"`             // Scene name (e.g., "default" or a file under scenes/)
	Width             int     `json:"width"`             // Image width
	Height            int     `json:"height"`            // Image height
	MaxSamples        int     `json:"maxSamples"`        // Maximum samples per pixel
	MaxPasses         int     `json:"maxPasses"`         // Maximum number of passes
	MaxDepth          int     `json:"maxDepth"`          // Recursion limit
	Seed              int64   `json:"seed"`              // Base seed for the tile generators
	Strategy          string  `json:"strategy"`          // Direction sampling strategy
	AdaptiveThreshold float64 `json:"adaptiveThreshold"` // Adaptive sampling relative error threshold (0 disables)
	Exposure          float64 `json:"exposure"`          // Tone-mapping exposure multiplier
	Overlay           bool    `json:"overlay"`           // Draw primitive outlines on the pass images
}

// Handler returns the HTTP routes served by the web server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes followed by the scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes := scene.ListScenes()

	files, _ := filepath.Glob(filepath.Join(s.sceneDir, "*.json"))
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".json")
		scenes = append(scenes, scene.SceneInfo{
			ID:          name,
			DisplayName: name,
			Description: "Scene file " + filepath.Base(file),
			Type:        "json",
		})
	}

	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default sampling configuration of a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName, nil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	config := sceneObj.SamplingConfig
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":             config.Width,
			"height":            config.Height,
			"samplesPerPixel":   config.SamplesPerPixel,
			"maxDepth":          config.MaxDepth,
			"strategy":          config.Strategy,
			"seed":              config.Seed,
			"adaptiveThreshold": config.AdaptiveThreshold,
		},
		"view": map[string]interface{}{
			"min": [2]float64{sceneObj.View.X.Lo, sceneObj.View.Y.Lo},
			"max": [2]float64{sceneObj.View.X.Hi, sceneObj.View.Y.Hi},
		},
		"primitiveCount": len(sceneObj.Entries),
		"lightCount":     len(sceneObj.Lights),
	})
}

var sceneNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// createScene resolves a built-in scene name or a file under the scene directory
func (s *Server) createScene(name string, logger core.Logger) (*scene.Scene, error) {
	if sceneObj, err := scene.Builtin(name); err == nil {
		return sceneObj, nil
	}
	if !sceneNamePattern.MatchString(name) {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}

	filename := filepath.Join(s.sceneDir, name+".json")
	if _, err := os.Stat(filename); err != nil {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	sceneObj, err := loaders.LoadJSON(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	if logger != nil {
		logger.Printf("Loaded scene file %s (%d primitives, %d lights)\n", filename, len(sceneObj.Entries), len(sceneObj.Lights))
	}
	return sceneObj, nil
}

// parseCommonSceneParams parses the parameters shared by render and inspect
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	if name := query.Get("scene"); name != "" {
		req.Scene = name
	} else {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 400, 16, 2000); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 400, 16, 2000); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// writeJSON encodes a JSON response with the API headers
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
