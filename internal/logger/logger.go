// Package logger builds the structured logger shared by eventoo hosts.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing to stderr at level ("debug", "info", ...)
// with a "text" or "json" formatter. Unknown levels fall back to info.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stderr, level, format)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(w io.Writer, level, format string) *logrus.Logger {
	log := logrus.New()
	log.Out = w

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}
