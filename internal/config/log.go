package config

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConsoleLog selects stderr instead of a log file.
const ConsoleLog = "console"

// InitLog parses the level and points logrus at a rotating log file.
// An empty path means ~/.wraith/logs/wraith.log.
func InitLog(level, path string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}

	if path == "" {
		dir, err := GlobalLogsDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, LogFileName)
	}

	if path == ConsoleLog {
		log.SetOutput(os.Stderr)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   filepath.ToSlash(path),
			MaxSize:    5, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		}))
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return nil
}

// SetLogLevel changes the level at runtime; invalid levels are ignored.
func SetLogLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("[config] Ignoring invalid log level %q", level)
		return
	}
	if log.GetLevel() != lvl {
		log.Infof("[config] Log level set to %s", lvl)
		log.SetLevel(lvl)
	}
}
