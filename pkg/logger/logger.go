// Package logger holds the process-wide zerolog logger.
//
// Call Init once from main. Packages that need a logger take a
// zerolog.Logger in their constructor; main hands each one a child built
// with Component so every line names the subsystem that wrote it.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else means info.
	Level string
	// Pretty switches to zerolog's console writer. Production should emit JSON.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Version are stamped on every line when set.
	Service string
	Version string
}

var (
	mu     sync.Mutex
	root   zerolog.Logger
	active bool
)

// New builds a logger from opts without touching the process-wide one.
// Caller information is only attached at debug level and below.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	b := zerolog.New(out).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		b = b.Str("service", opts.Service)
	}
	if opts.Version != "" {
		b = b.Str("version", opts.Version)
	}
	if lvl <= zerolog.DebugLevel {
		b = b.Caller()
	}
	return b.Logger()
}

// Init installs the process-wide logger. Later calls return the logger from
// the first call and ignore their options.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if active {
		return root
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(parseLevel(opts.Level))
	root = New(opts)
	active = true
	return root
}

// Get returns the logger installed by Init and panics before that.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !active {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component returns a child of the root logger tagged component=name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset uninstalls the root logger. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = zerolog.Logger{}
	active = false
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
