// Package logger provides leveled diagnostic logging for sitesettings.
//
// Log lines go to stderr so they never mix with rendered files printed with
// --stdout or with --json results. Two line formats are supported:
//
//	[DEBUG] 2026-02-03 10:30:45 published settings file path=/data/code/p1abc/... sid=p1abc
//	{"time":"2026-02-03T10:30:45Z","level":"DEBUG","msg":"published settings file","sid":"p1abc"}
//
// Initialize once from the --verbose and --log-format flags:
//
//	logger.Init(verbose)
//	logger.SetFormat(logger.FormatJSON)
//
// By default only Warn and Error are shown.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	serrors "github.com/ksyq12/sitesettings/internal/errors"
)

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Format selects the line format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a --log-format value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown log format %q (valid: text, json)", s)
}

// Fields are structured key-value pairs attached to a log line.
type Fields map[string]interface{}

// Logger handles leveled logging with thread-safe output.
type Logger struct {
	level  Level
	format Format
	output io.Writer
	now    func() time.Time
	mu     sync.Mutex
}

var std = &Logger{
	level:  LevelWarn,
	format: FormatText,
	output: os.Stderr,
	now:    time.Now,
}

// Init initializes the global logger with the specified verbosity.
// When verbose is true, Debug and Info levels are enabled.
func Init(verbose bool) {
	std.mu.Lock()
	defer std.mu.Unlock()

	if verbose {
		std.level = LevelDebug
	} else {
		std.level = LevelWarn
	}
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

// SetFormat sets the line format for the global logger.
func SetFormat(format Format) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.format = format
}

// SetOutput sets the output destination for the global logger.
// A nil writer restores os.Stderr.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	std.output = w
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

func (l *Logger) write(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	now := l.now()
	if l.format == FormatJSON {
		entry := make(map[string]interface{}, len(fields)+3)
		for k, v := range fields {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			entry[k] = v
		}
		entry["time"] = now.UTC().Format(time.RFC3339)
		entry["level"] = level.String()
		entry["msg"] = msg
		data, err := json.Marshal(entry)
		if err != nil {
			data = []byte(fmt.Sprintf(`{"level":"ERROR","msg":%q}`, "unencodable log fields: "+err.Error()))
		}
		_, _ = fmt.Fprintf(l.output, "%s\n", data)
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", level.String(), now.Format("2006-01-02 15:04:05"), msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	_, _ = fmt.Fprintln(l.output, b.String())
}

// Debug logs a debug message.
// Only shown when verbose mode is enabled.
func Debug(format string, args ...interface{}) {
	std.write(LevelDebug, fmt.Sprintf(format, args...), nil)
}

// Info logs an informational message.
// Only shown when verbose mode is enabled.
func Info(format string, args ...interface{}) {
	std.write(LevelInfo, fmt.Sprintf(format, args...), nil)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	std.write(LevelWarn, fmt.Sprintf(format, args...), nil)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	std.write(LevelError, fmt.Sprintf(format, args...), nil)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields Fields) {
	std.write(LevelDebug, msg, fields)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields Fields) {
	std.write(LevelInfo, msg, fields)
}

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields Fields) {
	std.write(LevelWarn, msg, fields)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields Fields) {
	std.write(LevelError, msg, fields)
}

// LogError logs err at error level. Render errors contribute their code,
// site, template and line as fields.
func LogError(err error, msg string) {
	if err == nil {
		return
	}

	fields := Fields{"error": err.Error()}
	var se *serrors.SettingsError
	if serrors.As(err, &se) {
		fields["code"] = string(se.Code)
		if se.Site != "" {
			fields["site"] = se.Site
		}
		if se.Template != "" {
			fields["template"] = se.Template
		}
		if se.Line > 0 {
			fields["line"] = se.Line
		}
		if se.Variable != "" {
			fields["variable"] = se.Variable
		}
	}
	std.write(LevelError, msg, fields)
}
