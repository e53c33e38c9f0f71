package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Config describes logging configuration.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Formatter is "text" or "json".
	Formatter string
	// OutputFile writes logs to a file instead of stderr.
	OutputFile string
}

// DefaultConfig returns a Config instance with default values.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Formatter: "text",
	}
}

// Configure configures the logging level, formatter and output path.
func (l *Logger) Configure(conf Config) {
	l.SetLevel(conf.Level)

	switch conf.Formatter {
	case "json":
		l.base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		l.base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	if conf.OutputFile != "" {
		out, err := os.OpenFile(
			conf.OutputFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600,
		)
		if err != nil {
			l.Error("can't open log output file", "output", conf.OutputFile)
		} else {
			l.SetOutput(out)
		}
	}
}
