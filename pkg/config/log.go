package config

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

var availableLoggingLevels = []string{"panic", "fatal", "error", "warn", "info", "debug"}

// ParseLevel accepts one of the available logging level names.
func ParseLevel(name string) (logrus.Level, error) {
	name = strings.ToLower(name)
	for _, l := range availableLoggingLevels {
		if l == name {
			return logrus.ParseLevel(name)
		}
	}
	return logrus.InfoLevel, fmt.Errorf("invalid log.level %q, expected one of: %s",
		name, strings.Join(availableLoggingLevels, ", "))
}

// NamedLogger creates a named package logger at the configured level.
func (c Config) NamedLogger(name string) *logrus.Entry {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger := &logrus.Logger{
		Out: os.Stderr,
		Formatter: &CustomTextFormatter{
			logrus.TextFormatter{
				ForceColors: true,
				CallerPrettyfier: func(*runtime.Frame) (string, string) {
					return "", ""
				},
			},
		},
		Hooks:        make(logrus.LevelHooks),
		Level:        level,
		ReportCaller: true,
		ExitFunc:     os.Exit,
	}
	return logger.WithField("pkg", name)
}

// CustomTextFormatter prefixes messages with the calling file and line.
type CustomTextFormatter struct {
	logrus.TextFormatter
}

// Format renders a single log entry
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		entry.Message = fmt.Sprintf("[%-15s:%03d]%s", path.Base(entry.Caller.File), entry.Caller.Line, entry.Message)
	}
	return f.TextFormatter.Format(entry)
}
