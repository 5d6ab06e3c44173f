package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/habitcycle/internal/constants"
)

// Rotation limits of the log file.
const (
	maxSizeMB  = 5
	maxBackups = 5
	maxAgeDays = 30
)

var (
	// Logger is the process-wide logger. Nil until Init.
	Logger *log.Logger

	fileWriter *lumberjack.Logger
)

type Config struct {
	// Debug lowers the level to DEBUG, adds caller info and mirrors to stderr.
	Debug bool
	// ConfigDir holds the logs/ directory.
	ConfigDir string
	// Output replaces the rotating log file when set.
	Output io.Writer
}

// LogPath returns the log file used for configDir.
func LogPath(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

func Init(cfg Config) error {
	sink := cfg.Output
	if sink == nil {
		path := LogPath(cfg.ConfigDir)
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return err
		}
		Close()
		fileWriter = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		sink = fileWriter
	}

	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.WarnLevel,
		Prefix:          constants.AppName,
	}
	if cfg.Debug {
		sink = io.MultiWriter(os.Stderr, sink)
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
		// Point caller info at the code calling these helpers.
		opts.CallerOffset = 2
	}
	Logger = log.NewWithOptions(sink, opts)
	return nil
}

// Close flushes and closes the rotating log file, if one is open.
func Close() error {
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

func logAt(level log.Level, msg string, keyvals []any) {
	if Logger == nil {
		return
	}
	Logger.Log(level, msg, keyvals...)
}

func Debug(msg string, keyvals ...any) { logAt(log.DebugLevel, msg, keyvals) }
func Info(msg string, keyvals ...any)  { logAt(log.InfoLevel, msg, keyvals) }
func Warn(msg string, keyvals ...any)  { logAt(log.WarnLevel, msg, keyvals) }
func Error(msg string, keyvals ...any) { logAt(log.ErrorLevel, msg, keyvals) }
