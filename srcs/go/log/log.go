// Package log is a small levelled logger writing one line per call.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lsds/halo/srcs/go/halo/config"
	"github.com/muesli/termenv"
)

type Level int32

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelTags = [...]string{Debug: "[D]", Info: "[I]", Warn: "[W]", Error: "[E]"}

// ParseLevel returns Info for unknown names.
func ParseLevel(name string) Level {
	for l, n := range [...]string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if n == name {
			return Level(l)
		}
	}
	return Info
}

// ShowTimestamp prefixes each line with the time since the logger was created.
const ShowTimestamp uint32 = 1

type Logger struct {
	level atomic.Int32
	flags atomic.Uint32
	t0    time.Time

	mu sync.Mutex
	w  io.Writer
}

func New() *Logger {
	l := &Logger{w: os.Stdout, t0: time.Now()}
	l.level.Store(int32(ParseLevel(config.LogLevel)))
	return l
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	l.w = w
	l.mu.Unlock()
}

func (l *Logger) SetLevel(level Level) { l.level.Store(int32(level)) }

func (l *Logger) SetFlags(flags ...uint32) {
	var f uint32
	for _, x := range flags {
		f |= x
	}
	l.flags.Store(f)
}

func (l *Logger) printf(tag string, format string, args ...any) {
	line := tag + " "
	if l.flags.Load()&ShowTimestamp != 0 {
		line += "[" + time.Since(l.t0).Round(time.Microsecond).String() + "] "
	}
	line += fmt.Sprintf(format, args...)
	if line[len(line)-1] != '\n' {
		line += "\n"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, line)
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if level < Level(l.level.Load()) {
		return
	}
	tag := levelTags[level]
	if level >= Error {
		tag = alert(tag)
	}
	l.printf(tag, format, args...)
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(Error, format, args...) }

// Exitf logs regardless of level and exits with status 1.
func (l *Logger) Exitf(format string, args ...any) {
	l.printf(alert("[F]"), format, args...)
	os.Exit(1)
}

var stdout = termenv.NewOutput(os.Stdout)

func alert(tag string) string {
	return stdout.String(tag).Foreground(termenv.ANSIMagenta).Bold().String()
}

var std = New()

var (
	Debugf    = std.Debugf
	Infof     = std.Infof
	Warnf     = std.Warnf
	Errorf    = std.Errorf
	Exitf     = std.Exitf
	SetFlags  = std.SetFlags
	SetLevel  = std.SetLevel
	SetOutput = std.SetOutput
)
