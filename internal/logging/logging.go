package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// File rotation limits
const (
	MaxSizeMB  = 50
	MaxBackups = 5
	MaxAgeDays = 14
)

// Setup configures the package-level logrus logger: JSON output to stdout
// and, when logFile is set, to a rotated file as well. The returned closer
// flushes the file writer.
func Setup(debug bool, logFile string) io.Closer {
	logrus.SetLevel(logrus.InfoLevel)
	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if logFile == "" {
		logrus.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	file := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, file))
	return file
}
