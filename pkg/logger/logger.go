package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/zfogg/inkwell/pkg/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// Init logs to the rotating file named by log.file, or stderr.
func Init(verbose bool) {
	logger = log.NewWithOptions(openWriter(), log.Options{
		ReportTimestamp: true,
		Prefix:          "inkwell",
	})
	logger.SetLevel(level(verbose))
}

// InitWithWriter points the logger at w, mainly for tests
func InitWithWriter(w io.Writer, verbose bool) {
	logger = log.New(w)
	logger.SetLevel(level(verbose))
}

func level(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// openWriter returns a rotating file writer, or stderr if the log
// directory is unusable
func openWriter() io.Writer {
	logFile := config.GetString("log.file")
	if logFile == "" {
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0700); err != nil {
		return os.Stderr
	}

	maxSize := config.GetInt("log.max_size_mb")
	if maxSize <= 0 {
		maxSize = 10
	}
	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    maxSize,
		MaxBackups: config.GetInt("log.max_backups"),
		MaxAge:     config.GetInt("log.max_age_days"),
		Compress:   true,
	}
}

// Debug, Info, Warn and Error are no-ops until Init runs.
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
