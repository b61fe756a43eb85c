package scene

import (
	"fmt"
	"sort"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "json"
}

type builtin struct {
	info SceneInfo
	new  func() *Scene
}

var builtins = map[string]builtin{
	"default": {
		info: SceneInfo{ID: "default", DisplayName: "Default Scene", Description: "Lights, tinted glass, mirror, smoke and a diffuse floor"},
		new:  NewDefaultScene,
	},
	"falloff": {
		info: SceneInfo{ID: "falloff", DisplayName: "Falloff", Description: "One circular light facing a diffuse wall"},
		new:  NewFalloffScene,
	},
	"prism": {
		info: SceneInfo{ID: "prism", DisplayName: "Prism", Description: "Glass triangle lit by a bar light"},
		new:  NewPrismScene,
	},
	"absorption": {
		info: SceneInfo{ID: "absorption", DisplayName: "Absorption", Description: "Absorbing slabs of increasing thickness"},
		new:  NewAbsorptionScene,
	},
	"mirrors": {
		info: SceneInfo{ID: "mirrors", DisplayName: "Facing Mirrors", Description: "Mutual reflections bounded by the depth limit"},
		new:  NewMirrorsScene,
	},
}

// Names returns the built-in scene identifiers in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListScenes returns metadata for every built-in scene, sorted by id
func ListScenes() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range Names() {
		info := builtins[name].info
		info.Type = "builtin"
		scenes = append(scenes, info)
	}
	return scenes
}

// Builtin creates a fresh copy of the named built-in scene
func Builtin(name string) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	return b.new(), nil
}
