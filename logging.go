package scenekit

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// DefaultLogger prints through the standard log package. Debug and info lines
// go to out, warnings and errors to errOut.
type DefaultLogger struct {
	mu     sync.Mutex
	min    logLevel
	prefix string
	out    *log.Logger
	errOut *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLoggerTo(os.Stdout, os.Stderr, prefix, debug)
}

func NewLoggerTo(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		prefix: prefix,
		out:    log.New(out, "", flags),
		errOut: log.New(errOut, "", flags),
	}
	l.SetDebug(debug)
	return l
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.min == levelDebug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if enabled {
		l.min = levelDebug
	} else {
		l.min = levelInfo
	}
}

func (l *DefaultLogger) logf(level logLevel, format string, args ...any) {
	l.mu.Lock()
	skip := level < l.min
	l.mu.Unlock()
	if skip {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		msg = fmt.Sprintf("[%s] %s: %s", l.prefix, levelNames[level], msg)
	} else {
		msg = levelNames[level] + ": " + msg
	}
	if level >= levelWarn {
		l.errOut.Print(msg)
		return
	}
	l.out.Print(msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.logf(levelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.logf(levelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.logf(levelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.logf(levelError, format, args...) }

// LoggingModule installs the logger resource. A non-nil Logger replaces the default one.
type LoggingModule struct {
	Prefix string
	Debug  bool
	Logger Logger
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	logger := m.Logger
	if logger == nil {
		logger = NewDefaultLogger(m.Prefix, m.Debug)
	}
	app.addResources(&LoggerResource{Logger: logger})
}

// LoggerResource lets systems ask for the logger by type.
type LoggerResource struct {
	Logger
}

type nopLogger struct{}

func NewNopLogger() Logger                           { return nopLogger{} }
func (nopLogger) DebugEnabled() bool                 { return false }
func (nopLogger) SetDebug(bool)                      {}
func (nopLogger) Debugf(string, ...any)              {}
func (nopLogger) Infof(string, ...any)               {}
func (nopLogger) Warnf(string, ...any)               {}
func (nopLogger) Errorf(string, ...any)              {}

// Logger returns the installed logger, or a no-op logger. Never returns nil.
func (app *App) Logger() Logger {
	if app == nil || app.resources == nil {
		return NewNopLogger()
	}
	if res, ok := Resource[LoggerResource](app); ok && res.Logger != nil {
		return res.Logger
	}
	return NewNopLogger()
}
