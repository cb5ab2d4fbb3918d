package utils

import (
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	logger     = log.New()
	loggerOnce sync.Once
)

// ConfigureLogger sets level (debug|info|warn|error) and format (text|json).
func ConfigureLogger(level, format string) {
	loggerOnce.Do(func() {
		logger.SetOutput(os.Stdout)
	})
	if lvl, err := log.ParseLevel(strings.TrimSpace(level)); err == nil {
		logger.SetLevel(lvl)
	}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Logger exposes the shared logger for call sites that need fields.
func Logger() *log.Logger {
	return logger
}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	logger.WithFields(log.Fields{
		"module":     strings.ToUpper(module),
		"action":     action,
		"request_id": strings.TrimSpace(requestID),
	}).Info(message)
}

// LogFailure is LogEvent at warn level with the error attached.
func LogFailure(requestID, module, action string, err error) {
	logger.WithFields(log.Fields{
		"module":     strings.ToUpper(module),
		"action":     action,
		"request_id": strings.TrimSpace(requestID),
	}).WithError(err).Warn("failed")
}
