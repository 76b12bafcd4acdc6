package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-sparks-pathtracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warn", "error"
}

// WebLogger implements core.Logger by forwarding every line to the server
// log and to a render's console channel
type WebLogger struct {
	renderID    string
	base        core.Logger
	consoleChan chan<- ConsoleMessage
}

var _ core.Logger = (*WebLogger)(nil)

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, base core.Logger, consoleChan chan<- ConsoleMessage) *WebLogger {
	if base == nil {
		base = core.NopLogger{}
	}
	return &WebLogger{
		renderID:    renderID,
		base:        base,
		consoleChan: consoleChan,
	}
}

func (wl *WebLogger) Debugf(format string, args ...interface{}) {
	wl.base.Debugf(format, args...)
	wl.send("debug", format, args)
}

func (wl *WebLogger) Infof(format string, args ...interface{}) {
	wl.base.Infof(format, args...)
	wl.send("info", format, args)
}

func (wl *WebLogger) Warnf(format string, args ...interface{}) {
	wl.base.Warnf(format, args...)
	wl.send("warn", format, args)
}

func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	wl.base.Errorf(format, args...)
	wl.send("error", format, args)
}

// send never blocks; a full console drops the line
func (wl *WebLogger) send(level, format string, args []interface{}) {
	if wl.consoleChan == nil {
		return
	}
	msg := ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   strings.TrimRight(fmt.Sprintf(format, args...), "\n"),
		Timestamp: time.Now(),
		Level:     level,
	}
	select {
	case wl.consoleChan <- msg:
	default:
	}
}
