package logger

import (
	"io"
	"strings"

	"soundamp/build"
	"soundamp/logger/hooks"

	"github.com/sirupsen/logrus"
)

// Construct a new global logger with default configuration
func init() {
	global = New(NewConfig())
}

// Global logger with default configuration
var global *Entry

// A short-form wrapper around logrus.Fields
type F logrus.Fields

// Entry wraps a logrus entry carrying fields
type Entry struct {
	config Configurer
	entry  *logrus.Entry
	logger *logrus.Logger
}

// Sets up the logger according to configuration
func Setup() { global.Setup() }
func (l *Entry) Setup() {
	l.DeleteHooks()
	l.SetLevel(l.config.Level())
	l.ConsoleOutput(l.config.ConsoleOutput())
	l.LogToFile(l.config.LogFile())
	l.SetFormat(l.config.Format())
}

// Removes all hooks from the logger, call this before each setup
func (l *Entry) DeleteHooks() {
	for k := range l.logger.Hooks {
		delete(l.logger.Hooks, k)
	}
}

// Set the log level of the logger
func SetLevel(lvl string) { global.SetLevel(lvl) }
func (l *Entry) SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		l.logger.Level = logrus.DebugLevel
	case "warn":
		l.logger.Level = logrus.WarnLevel
	case "error":
		l.logger.Level = logrus.ErrorLevel
	default:
		l.logger.Level = logrus.InfoLevel
	}
}

// Enable or disable console output
func ConsoleOutput(enable bool) { global.ConsoleOutput(enable) }
func (l *Entry) ConsoleOutput(enable bool) {
	l.logger.Out = io.Discard
	if enable {
		l.logger.Hooks.Add(hooks.NewConsoleHook())
	}
}

// Log to a file
func LogToFile(path string) { global.LogToFile(path) }
func (l *Entry) LogToFile(path string) {
	if path == "" {
		return
	}
	hook, err := hooks.NewFileHook(path)
	if err != nil {
		l.WithError(err).WithField("path", path).Error("unable to open log file")
		return
	}
	l.logger.Hooks.Add(hook)
}

// Set the format of the logger
func SetFormat(fmt string) { global.SetFormat(fmt) }
func (l *Entry) SetFormat(fmt string) {
	switch fmt {
	case "json":
		l.logger.Formatter = &logrus.JSONFormatter{}
	default:
		l.logger.Formatter = &logrus.TextFormatter{
			FullTimestamp: true,
		}
	}
}

func (l *Entry) with(e *logrus.Entry) *Entry {
	return &Entry{
		config: l.config,
		entry:  e,
		logger: l.logger,
	}
}

// Log a field and value
func WithField(k string, v interface{}) *Entry { return global.WithField(k, v) }
func (l *Entry) WithField(k string, v interface{}) *Entry {
	return l.with(l.entry.WithField(k, v))
}

// Log a with multiple fields
func WithFields(fields F) *Entry { return global.WithFields(fields) }
func (l *Entry) WithFields(fields F) *Entry {
	return l.with(l.entry.WithFields(logrus.Fields(fields)))
}

// Log an error
func WithError(err error) *Entry { return global.WithError(err) }
func (l *Entry) WithError(err error) *Entry {
	return l.with(l.entry.WithError(err))
}

// Log a debug message
func Debug(msg string, v ...interface{}) { global.Debug(msg, v...) }
func (l *Entry) Debug(msg string, v ...interface{}) {
	l.entry.Debugf(msg, v...)
}

// Log an info message
func Info(msg string, v ...interface{}) { global.Info(msg, v...) }
func (l *Entry) Info(msg string, v ...interface{}) {
	l.entry.Infof(msg, v...)
}

// Log a warning message
func Warn(msg string, v ...interface{}) { global.Warn(msg, v...) }
func (l *Entry) Warn(msg string, v ...interface{}) {
	l.entry.Warnf(msg, v...)
}

// Log an error message
func Error(msg string, v ...interface{}) { global.Error(msg, v...) }
func (l *Entry) Error(msg string, v ...interface{}) {
	l.entry.Errorf(msg, v...)
}

// Log a fatal error, this causes the application to exit
func Fatal(msg string, v ...interface{}) { global.Fatal(msg, v...) }
func (l *Entry) Fatal(msg string, v ...interface{}) {
	l.entry.Fatalf(msg, v...)
}

// Exported logger constructor, requiring a config type that
// implements the config interface
func New(config Configurer) *Entry {
	log := logrus.New()
	l := &Entry{
		config: config,
		logger: log,
		entry: logrus.NewEntry(log).WithFields(logrus.Fields{
			"version":   build.Version(),
			"buildTime": build.TimeStr(),
		}),
	}
	l.Setup()
	return l
}

// Update the global logger to a different logger
func SetGlobalLogger(l *Entry) {
	global = l
}
