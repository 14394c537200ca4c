package internal

// Internal logging utility.

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
}

type LogLevel int

const (
	// error levels that should almost always be printed
	LevelFatal LogLevel = iota // error that must stop the program
	LevelError                 // error that does not need to stop execution

	// debugging levels, okay to disable
	LevelWarn // something may be wrong, but not necessarily an error
	LevelInfo // nothing wrong, informational only

	// Production code by default only shows warnings and above.
	LogLevelDefault = LevelWarn

	// min, max levels for setting print level
	LevelMin = LevelFatal
	LevelMax = LevelInfo
)

var levelToZap = []zapcore.Level{
	zapcore.FatalLevel,
	zapcore.ErrorLevel,
	zapcore.WarnLevel,
	zapcore.InfoLevel,
}

func NewLogger() *Logger {
	level := zap.NewAtomicLevelAt(levelToZap[LogLevelDefault])
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := cfg.Build(zap.AddStacktrace(zap.NewAtomicLevelAt(zap.FatalLevel)))
	if err != nil {
		panic(err)
	}
	return &Logger{level: level, sugar: log.Sugar()}
}

func (l *Logger) LogLevel() LogLevel {
	z := l.level.Level()
	for i, lvl := range levelToZap {
		if lvl == z {
			return LogLevel(i)
		}
	}
	return LogLevelDefault
}

// SetLogLevel returns the old level
func (l *Logger) SetLogLevel(level LogLevel) LogLevel {
	if level < LevelMin || level > LevelMax {
		panic("trying to set invalid log level")
	}
	old := l.LogLevel()
	l.level.SetLevel(levelToZap[level])
	return old
}

func (l *Logger) Info(v ...any)                 { l.sugar.Info(v...) }
func (l *Logger) Infof(format string, v ...any) { l.sugar.Infof(format, v...) }

func (l *Logger) Warn(v ...any)                 { l.sugar.Warn(v...) }
func (l *Logger) Warnf(format string, v ...any) { l.sugar.Warnf(format, v...) }

func (l *Logger) Error(v ...any)                 { l.sugar.Error(v...) }
func (l *Logger) Errorf(format string, v ...any) { l.sugar.Errorf(format, v...) }

func (l *Logger) Fatal(v ...any)                 { l.sugar.Fatal(v...) }
func (l *Logger) Fatalf(format string, v ...any) { l.sugar.Fatalf(format, v...) }
