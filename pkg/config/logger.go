package config

import (
	"errors"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ConsoleLoggerConfig struct {
	Level string `yaml:"level" validate:"required,oneof=none debug normal"`
}

type FileLoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" validate:"required_unless=Level none"`
	MaxSizeMB   int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups  int    `yaml:"max_backups" validate:"gte=0"`
	Compress    bool   `yaml:"compress"`
}

type LoggingConfig struct {
	FileLogger    FileLoggerConfig    `yaml:"file"`
	ConsoleLogger ConsoleLoggerConfig `yaml:"console"`
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}

// Prepare returns configured zap logger named after the program and a
// function which flushes and closes the file log, if any. Debug forces
// debug level on the console.
func (conf *LoggingConfig) Prepare(name string, debug bool) (*zap.Logger, func() error) {

	// Console - split stdout and stderr, errors go to stderr

	consoleEncoder := func(stream *os.File) zapcore.EncoderConfig {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		if EnableColorOutput(stream) {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
			ec.TimeKey = zapcore.OmitKey
		} else {
			ec.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		return ec
	}
	encoderLP := zapcore.NewConsoleEncoder(consoleEncoder(os.Stdout))
	encoderHP := newEncoder(consoleEncoder(os.Stderr))

	level := conf.ConsoleLogger.Level
	if debug {
		level = "debug"
	}
	var lowest zapcore.Level
	switch level {
	case "normal":
		lowest = zapcore.InfoLevel
	case "debug":
		lowest = zapcore.DebugLevel
	}

	consoleCoreLP, consoleCoreHP := zapcore.NewNopCore(), zapcore.NewNopCore()
	if level != "none" {
		consoleCoreLP = zapcore.NewCore(encoderLP, zapcore.Lock(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lowest <= lvl && lvl < zapcore.ErrorLevel
			}))
		consoleCoreHP = zapcore.NewCore(encoderHP, zapcore.Lock(os.Stderr),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			}))
	}

	// File - rotated by lumberjack

	fileCore := zapcore.NewNopCore()
	closer := func() error { return nil }
	if conf.FileLogger.Level != "none" && conf.FileLogger.Destination != "" {
		fileLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
		if conf.FileLogger.Level == "debug" {
			fileLevel.SetLevel(zap.DebugLevel)
		}
		rotator := &lumberjack.Logger{
			Filename:   conf.FileLogger.Destination,
			MaxSize:    conf.FileLogger.MaxSizeMB,
			MaxBackups: conf.FileLogger.MaxBackups,
			Compress:   conf.FileLogger.Compress,
		}
		fileCore = zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotator), fileLevel)
		closer = rotator.Close
	}

	log := zap.New(zapcore.NewTee(consoleCoreHP, consoleCoreLP, fileCore), zap.AddCaller()).Named(name)
	return log, func() error {
		// syncing console streams fails on terminals
		_ = log.Sync()
		return closer()
	}
}

// When logging error to console - do not output verbose message.

type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	newFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
