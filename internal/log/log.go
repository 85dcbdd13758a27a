// Package log provides structured logging for twinview.
// Entries carry a level, a category and key=value fields. Logging is a no-op
// until Init (or InitWithTeaLog) is called, so library code can log freely.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/twinview/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel converts a config string into a Level. Unknown values map to info.
func ParseLevel(s string) Level {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return l
		}
	}
	return LevelInfo
}

// Category groups related log messages.
type Category string

const (
	CatNav     Category = "nav"     // Navigator transitions, swaps and recovery
	CatWindow  Category = "window"  // Window handle lifecycle
	CatBinding Category = "binding" // Binding engine and binding teardown
	CatLocator Category = "locator" // Content path resolution and registry reloads
	CatBrowser Category = "browser" // Console output and script failures from a window
	CatDiag    Category = "diag"    // Diagnostics store
	CatConfig  Category = "config"  // Configuration loading/saving
	CatTrace   Category = "trace"   // Trace provider and exporters
	CatUI      Category = "ui"      // Interactive viewer
)

// Entry is one log record as written and published.
type Entry struct {
	Time     time.Time
	Level    Level
	Category Category
	Message  string
	Fields   []any
}

// String renders the entry as one line, without the trailing newline:
// 2026-10-19T10:45:00 [ERROR] [nav] message key=value key2=value2
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", e.Time.Format("2006-01-02T15:04:05"), e.Level, e.Category, e.Message)
	for i := 0; i+1 < len(e.Fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Fields[i], e.Fields[i+1])
	}
	if len(e.Fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", e.Fields[len(e.Fields)-1])
	}
	return b.String()
}

// eventType is the pubsub type an entry is published under.
func (e Entry) eventType() pubsub.EventType {
	return pubsub.EventType(strings.ToLower(e.Level.String()))
}

type logger struct {
	mu       sync.Mutex
	writer   io.Writer
	enabled  bool
	minLevel Level
	entries  *pubsub.Broker[Entry]
}

var (
	current *logger
	initMu  sync.Mutex
)

// Init points the global logger at the file at path, creating parent
// directories. The returned cleanup closes the file.
func Init(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(f)
	return func() { _ = f.Close() }, nil
}

// InitWithTeaLog opens path through tea.LogToFile so bubbletea's own debug
// output lands in the same file as the viewer's log.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	install(f)
	return func() { _ = f.Close() }, nil
}

// InitWriter points the global logger at w.
func InitWriter(w io.Writer) {
	install(w)
}

func install(w io.Writer) {
	initMu.Lock()
	defer initMu.Unlock()
	if current != nil {
		current.entries.Close()
	}
	current = &logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		entries:  pubsub.NewBroker[Entry](),
	}
}

func active() *logger {
	initMu.Lock()
	defer initMu.Unlock()
	return current
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := active(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := active(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any)  { write(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any)  { write(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err appended as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", text))
}

func write(level Level, cat Category, msg string, fields []any) {
	l := active()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := Entry{Time: time.Now(), Level: level, Category: cat, Message: msg, Fields: fields}
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry.String()+"\n")
	}
	l.entries.Publish(entry.eventType(), entry)
}

// LogEvent is a published log entry.
type LogEvent = pubsub.Event[Entry]

// LogListener delivers log entries to a Bubble Tea model.
type LogListener = pubsub.Listener[Entry]

// NewListener subscribes to log entries until ctx ends. Returns nil when
// logging was never initialized.
func NewListener(ctx context.Context) *LogListener {
	l := active()
	if l == nil {
		return nil
	}
	return pubsub.NewListener[Entry](ctx, l.entries)
}
