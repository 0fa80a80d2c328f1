package internal

// Internal logging utility.

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	logLevel LogLevel
	logger   *logrus.Logger
}

type LogLevel int

const (
	// error levels that should almost always be printed
	LevelFatal LogLevel = iota // error that must stop the program (panics)
	LevelError                 // error that does not need to stop execution

	// debugging levels, okay to disable
	LevelWarn // something may be wrong, but not necessarily an error
	LevelInfo // nothing wrong, informational only

	// Production code by default only shows warnings and above.
	LogLevelDefault = LevelWarn

	// min, max levels for setting print level
	LevelMin = LevelFatal
	LevelMax = LevelInfo
)

var levelToLogrus = []logrus.Level{
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
}

func NewLogger() *Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(levelToLogrus[LogLevelDefault])
	return &Logger{logLevel: LogLevelDefault, logger: logger}
}

func (l *Logger) LogLevel() LogLevel {
	return l.logLevel
}

// SetLogLevel returns the old level
func (l *Logger) SetLogLevel(level LogLevel) LogLevel {
	if level < LevelMin || level > LevelMax {
		panic("trying to set invalid log level")
	}
	old := l.logLevel
	l.logLevel = level
	l.logger.SetLevel(levelToLogrus[level])
	return old
}

// SetOutput redirects log output, mostly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// WithFields returns an entry carrying structured fields. The entry honors
// the current log level.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.logger.WithFields(fields)
}

func (l *Logger) Info(v ...any)                 { l.logger.Info(fmt.Sprint(v...)) }
func (l *Logger) Infof(format string, v ...any) { l.logger.Infof(format, v...) }

func (l *Logger) Warn(v ...any)                 { l.logger.Warn(fmt.Sprint(v...)) }
func (l *Logger) Warnf(format string, v ...any) { l.logger.Warnf(format, v...) }

func (l *Logger) Error(v ...any)                 { l.logger.Error(fmt.Sprint(v...)) }
func (l *Logger) Errorf(format string, v ...any) { l.logger.Errorf(format, v...) }

func (l *Logger) Fatal(v ...any) {
	l.logger.Error(string(debug.Stack()))
	l.logger.Fatal(fmt.Sprint(v...))
}

func (l *Logger) Fatalf(format string, v ...any) {
	l.logger.Error(string(debug.Stack()))
	l.logger.Fatalf(format, v...)
}
