package logsink

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/core-tools/procwatch/pkg/errors"
)

const (
	defaultMaxSizeMB  = 5
	defaultMaxBackups = 3
)

// Config defines the session log sink: a rotating, append-only text file
// shared by the supervisor and the child output relay.
type Config struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level,omitempty"`       // "debug", "info", "warn", "error"
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"` // rotation threshold, default 5
	MaxBackups int    `yaml:"max_backups,omitempty"` // rotated files kept, default 3
}

// Sink is the process-wide log sink. The underlying zap core serializes
// writes, so the sink is safe to share between the supervision loop and the
// output relay goroutine. Construct exactly one Sink per session.
type Sink struct {
	sugar   *zap.SugaredLogger
	logger  *zap.Logger
	rotator *lumberjack.Logger
}

// NewSink opens the rotating log file and builds the zap core on top of it.
func NewSink(config Config) (*Sink, error) {
	if config.Path == "" {
		return nil, errors.NewValidationError("log file path is required", nil)
	}
	if config.MaxSizeMB < 0 {
		return nil, errors.NewValidationError("max size cannot be negative", nil).WithContext("max_size_mb", config.MaxSizeMB)
	}
	if config.MaxBackups < 0 {
		return nil, errors.NewValidationError("max backups cannot be negative", nil).WithContext("max_backups", config.MaxBackups)
	}

	maxSize := config.MaxSizeMB
	if maxSize == 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := config.MaxBackups
	if maxBackups == 0 {
		maxBackups = defaultMaxBackups
	}

	rotator := &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}

	level, err := levelFromString(config.Level)
	if err != nil {
		return nil, errors.NewValidationError("invalid log level", err).WithContext("level", config.Level)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(rotator)),
		level,
	)

	logger := zap.New(core)

	return &Sink{
		sugar:   logger.Sugar(),
		logger:  logger,
		rotator: rotator,
	}, nil
}

func (s *Sink) Debugf(format string, args ...interface{}) {
	s.sugar.Debugf(format, args...)
}

func (s *Sink) Infof(format string, args ...interface{}) {
	s.sugar.Infof(format, args...)
}

func (s *Sink) Warnf(format string, args ...interface{}) {
	s.sugar.Warnf(format, args...)
}

func (s *Sink) Errorf(format string, args ...interface{}) {
	s.sugar.Errorf(format, args...)
}

// Close flushes buffered entries and closes the rotating file.
func (s *Sink) Close() error {
	syncErr := s.logger.Sync()
	closeErr := s.rotator.Close()
	if closeErr != nil {
		return errors.NewIOError("failed to close log file", closeErr)
	}
	if syncErr != nil {
		return errors.NewIOError("failed to sync log sink", syncErr)
	}
	return nil
}

func levelFromString(levelStr string) (zapcore.Level, error) {
	switch levelStr {
	case "", "info":
		return zap.InfoLevel, nil
	case "debug":
		return zap.DebugLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, errors.NewValidationError("unknown log level: "+levelStr, nil)
	}
}
