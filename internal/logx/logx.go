package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

type Logger struct {
	zl zerolog.Logger
}

// New writes human-readable lines to stdout.
func New(min Level) *Logger {
	return NewWithWriter(min, os.Stdout, false)
}

func NewWithWriter(min Level, w io.Writer, json bool) *Logger {
	out := w
	if !json {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	zl := zerolog.New(out).Level(min.zerolog()).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Zerolog exposes the underlying sink for libraries that take a zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(kv ...any) *Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(kv); i += 2 {
		ctx = ctx.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug(msg string, kv ...any) { l.log(l.zl.Debug(), msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(l.zl.Info(), msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(l.zl.Warn(), msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.log(l.zl.Error(), msg, kv...) }

func (l *Logger) log(evt *zerolog.Event, msg string, kv ...any) {
	if evt == nil {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if err, ok := kv[i+1].(error); ok {
			evt = evt.AnErr(key, err)
			continue
		}
		evt = evt.Interface(key, kv[i+1])
	}
	evt.Msg(msg)
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
