package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-light2d/pkg/core"
)

// Console levels
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// ConsoleMessage is one line of render output forwarded to the browser console
type ConsoleMessage struct {
	RenderID  string    `json:"renderId,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// messageLevel classifies a renderer log line by its wording
func messageLevel(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error"), strings.Contains(lower, "failed"):
		return LevelError
	case strings.Contains(lower, "warning"), strings.Contains(lower, "cancelled"):
		return LevelWarning
	default:
		return LevelInfo
	}
}

// WebLogger implements core.Logger for one render, echoing to stdout with the
// render id and forwarding to its SSE console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger for the render renderID. consoleChan may be nil.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	fmt.Printf("[%s] %s", wl.renderID, message)

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     messageLevel(message),
	}:
	default:
		// Dropped rather than stall the render
	}
}
