// Package logger is the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured log fields.
type Fields = map[string]interface{}

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
}

// Configure sets the JSON formatter and parses level. An empty or unknown
// level leaves the logger at info.
func Configure(level string) {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	SetLevel(level)
}

// SetLevel changes the level, returning false when level is not recognised.
func SetLevel(level string) bool {
	if level == "" {
		log.SetLevel(logrus.InfoLevel)
		return true
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.SetLevel(logrus.InfoLevel)
		log.Warnf("Invalid log level '%s', defaulting to 'info'", level)
		return false
	}
	log.SetLevel(parsed)
	return true
}

// Level reports the current level name.
func Level() string {
	return log.GetLevel().String()
}

// SetOutput redirects log output; tests use it to capture entries.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Writer returns a writer that logs each line at info, for libraries that
// only accept an io.Writer.
func Writer() *io.PipeWriter {
	return log.Writer()
}

func Debug(args ...interface{}) { log.Debug(args...) }
func Info(args ...interface{})  { log.Info(args...) }
func Warn(args ...interface{})  { log.Warn(args...) }
func Error(args ...interface{}) { log.Error(args...) }
func Fatal(args ...interface{}) { log.Fatal(args...) }

func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { log.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { log.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { log.Fatalf(format, args...) }

// DebugWithFields logs msg at debug with fields attached.
func DebugWithFields(msg string, fields Fields) {
	log.WithFields(logrus.Fields(fields)).Debug(msg)
}

// InfoWithFields logs msg at info with fields attached.
func InfoWithFields(msg string, fields Fields) {
	log.WithFields(logrus.Fields(fields)).Info(msg)
}

// WarnWithFields logs msg at warn with fields attached.
func WarnWithFields(msg string, fields Fields) {
	log.WithFields(logrus.Fields(fields)).Warn(msg)
}

// ErrorWithFields logs msg at error with fields attached.
func ErrorWithFields(msg string, fields Fields) {
	log.WithFields(logrus.Fields(fields)).Error(msg)
}
