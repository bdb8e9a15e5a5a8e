package logger

import (
	"io"
	"mpc-coordinator/internal/config"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance.
var Log = logrus.New()

// rotator is kept so Close can flush the rotating file on shutdown.
var rotator *lumberjack.Logger

// InitLogger configures the global logger: level, text or json formatting,
// and stdout plus an optional rotating log file.
func InitLogger(cfg config.LoggerConfig) error {
	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrapf(err, "log level %q", cfg.Level)
	}
	Log.SetLevel(level)

	// Set log format
	switch cfg.Format {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// Set output
	if cfg.FilePath == "" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	rotator = &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	// Set output to both file and stdout
	Log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

// Component returns an entry tagged with the emitting subsystem.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

// Close releases the rotating log file, if any.
func Close() error {
	if rotator == nil {
		return nil
	}
	return rotator.Close()
}
