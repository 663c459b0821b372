package services

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

// ConsoleLogger implementation
type ConsoleLogger struct {
	debugMode bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{debugMode: false}
}

func (cl *ConsoleLogger) Info(message string, args ...interface{}) {
	shared.ColorInfo.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Warning(message string, args ...interface{}) {
	shared.ColorWarning.Printf("⚠️ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Error(message string, args ...interface{}) {
	shared.ColorError.Printf("❌ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Debug(message string, args ...interface{}) {
	if !cl.debugMode {
		return
	}
	shared.ColorDebug.Printf("🐛 DEBUG: "+message+"\n", args...)
}

func (cl *ConsoleLogger) Success(message string, args ...interface{}) {
	shared.ColorSuccess.Printf("✅ "+message+"\n", args...)
}

func (cl *ConsoleLogger) SetDebugMode(enabled bool) {
	cl.debugMode = enabled
}

// StructuredLogger writes leveled key/value records through hclog. It is
// used when the service runs unattended and logs are collected.
type StructuredLogger struct {
	logger hclog.Logger
}

// NewStructuredLogger creates a logger named name writing to w. jsonFormat
// selects JSON lines over hclog's text format.
func NewStructuredLogger(name string, w io.Writer, jsonFormat bool) *StructuredLogger {
	if w == nil {
		w = os.Stderr
	}
	return &StructuredLogger{
		logger: hclog.New(&hclog.LoggerOptions{
			Name:       name,
			Level:      hclog.Info,
			Output:     w,
			JSONFormat: jsonFormat,
		}),
	}
}

// Named returns a sub-logger whose name is suffixed with name.
func (sl *StructuredLogger) Named(name string) *StructuredLogger {
	return &StructuredLogger{logger: sl.logger.Named(name)}
}

func (sl *StructuredLogger) Info(message string, args ...interface{}) {
	sl.logger.Info(fmt.Sprintf(message, args...))
}

func (sl *StructuredLogger) Warning(message string, args ...interface{}) {
	sl.logger.Warn(fmt.Sprintf(message, args...))
}

func (sl *StructuredLogger) Error(message string, args ...interface{}) {
	sl.logger.Error(fmt.Sprintf(message, args...))
}

func (sl *StructuredLogger) Debug(message string, args ...interface{}) {
	sl.logger.Debug(fmt.Sprintf(message, args...))
}

func (sl *StructuredLogger) Success(message string, args ...interface{}) {
	sl.logger.Info(fmt.Sprintf(message, args...), "result", "success")
}

func (sl *StructuredLogger) SetDebugMode(enabled bool) {
	if enabled {
		sl.logger.SetLevel(hclog.Debug)
	} else {
		sl.logger.SetLevel(hclog.Info)
	}
}

// NewLogger picks the logger for format: "json" and "text" select the
// structured logger, anything else the coloured console.
func NewLogger(format string, debug bool) interfaces.LoggerService {
	var logger interfaces.LoggerService
	switch strings.ToLower(format) {
	case "json":
		logger = NewStructuredLogger("tidaloader", os.Stderr, true)
	case "text":
		logger = NewStructuredLogger("tidaloader", os.Stderr, false)
	default:
		logger = NewConsoleLogger()
	}
	logger.SetDebugMode(debug)
	return logger
}
