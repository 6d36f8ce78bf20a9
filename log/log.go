// Package log provides a configurable logger based on zap. It mirrors the
// logging surface used across the codebase: formatted (Infof), structured
// (Infow) and bare (Warn, Error) variants, initialized once from the
// daemon configuration.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels supported by Init.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const logTestWriterName = "log-test-writer"

var (
	log   *zap.SugaredLogger
	level zapcore.Level

	// logTestWriter is the writer used when the output is set to
	// logTestWriterName. Used only by tests and benchmarks.
	logTestWriter io.Writer = &bytes.Buffer{}

	// panicOnInvalidChars is set by the LOG_PANIC_ON_INVALIDCHARS environment
	// variable. When enabled, logging a message containing an invalid UTF-8
	// sequence panics, to help catch binary data leaking into logs.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

// Level returns the current log level as a string.
func Level() string {
	return level.String()
}

type invalidCharChecker struct{}

func (invalidCharChecker) Write(p []byte) (int, error) {
	if bytes.ContainsRune(p, '�') {
		panic(fmt.Sprintf("log line with invalid chars: %q", string(p)))
	}
	return len(p), nil
}

// Init initializes the logger with the given level and output. The output can
// be "stdout", "stderr", a file path, or the test writer name. The
// disabledModules argument is kept for call-site compatibility and currently
// unused.
func Init(logLevel, output string, _ []string) {
	var err error
	if err = level.Set(logLevel); err != nil {
		panic(fmt.Sprintf("invalid log level %q: %v", logLevel, err))
	}
	var w zapcore.WriteSyncer
	switch output {
	case "stdout":
		w = zapcore.Lock(os.Stdout)
	case "stderr":
		w = zapcore.Lock(os.Stderr)
	case logTestWriterName:
		w = zapcore.AddSync(logTestWriter)
	default:
		f, ferr := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, ferr))
		}
		w = zapcore.Lock(f)
	}
	if panicOnInvalidChars {
		w = zapcore.AddSync(io.MultiWriter(w, invalidCharChecker{}))
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, level)
	log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

func init() {
	// default logger until Init is called by the daemon
	Init(LogLevelInfo, "stderr", nil)
}

func Debug(args ...any) { log.Debug(args...) }
func Info(args ...any)  { log.Info(args...) }
func Warn(args ...any)  { log.Warn(args...) }
func Error(args ...any) { log.Error(args...) }

func Debugf(template string, args ...any) { log.Debugf(template, args...) }
func Infof(template string, args ...any)  { log.Infof(template, args...) }
func Warnf(template string, args ...any)  { log.Warnf(template, args...) }
func Errorf(template string, args ...any) { log.Errorf(template, args...) }
func Fatalf(template string, args ...any) { log.Fatalf(template, args...) }

// Debugw logs a message with key-value pairs.
func Debugw(msg string, keysAndValues ...any) { log.Debugw(msg, keysAndValues...) }

// Infow logs a message with key-value pairs.
func Infow(msg string, keysAndValues ...any) { log.Infow(msg, keysAndValues...) }

// Warnw logs a message with key-value pairs.
func Warnw(msg string, keysAndValues ...any) { log.Warnw(msg, keysAndValues...) }

// Errorw logs an error with a message.
func Errorw(err error, msg string) {
	if err != nil {
		log.Errorw(msg, "error", err.Error())
		return
	}
	log.Error(msg)
}
