package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"agenda-widget/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log *logrus.Logger

// Setup настраивает глобальный логгер: JSON в файл с ротацией и, при необходимости, в stderr.
func Setup(cfg *config.Config) error {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info: %v\n", cfg.LogLevel, err)
	}
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log dir %s: %w", cfg.LogDir, err)
	}

	writers := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "agenda-widget.log"),
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     28,
		Compress:   true,
	}}
	if cfg.LogToConsole {
		writers = append(writers, os.Stderr)
	}
	l.SetOutput(io.MultiWriter(writers...))

	log = l
	log.Infof("logger configured, level=%s dir=%s", level, cfg.LogDir)
	return nil
}

// L возвращает текущий логгер; до Setup пишет в stderr.
func L() *logrus.Logger {
	if log == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		return l
	}
	return log
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return L().WithFields(fields)
}

func Debugf(format string, args ...interface{}) { L().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { L().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { L().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { L().Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { L().Fatalf(format, args...) }
