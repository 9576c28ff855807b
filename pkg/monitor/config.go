package monitor

import (
	"os"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/core-tools/procwatch/pkg/errors"
	"github.com/core-tools/procwatch/pkg/logsink"
)

const (
	// DefaultGracePeriod is the interval allowed for voluntary exit after a
	// graceful termination request before escalating to a forced kill.
	DefaultGracePeriod = 5 * time.Second

	// DefaultRestartDelay is the pause between a process exit and its
	// restart, to avoid tight crash-restart loops.
	DefaultRestartDelay = 1 * time.Second
)

// ProcessConfig is the immutable input of a monitoring session.
type ProcessConfig struct {
	Command      []string      // command tokens, non-empty
	LogFile      string        // log sink target
	Restart      bool          // restart the process when it exits
	Timeout      time.Duration // wall-clock limit per instance, 0 = none
	RestartDelay time.Duration // pause before restart, defaulted to 1s
}

// FileConfig is the YAML form of a monitoring session configuration.
type FileConfig struct {
	Command        string          `yaml:"command"`
	LogFile        string          `yaml:"logfile"`
	Restart        bool            `yaml:"restart,omitempty"`
	TimeoutSeconds int             `yaml:"timeout_seconds,omitempty"`
	Log            *logsink.Config `yaml:"log,omitempty"`
}

// ParseCommandLine splits a command string into tokens with shell-style
// quoting rules.
func ParseCommandLine(commandLine string) ([]string, error) {
	tokens, err := shlex.Split(commandLine)
	if err != nil {
		return nil, errors.NewValidationError("failed to parse command", err).WithContext("command", commandLine)
	}
	if len(tokens) == 0 {
		return nil, errors.NewValidationError("command cannot be empty", nil)
	}
	return tokens, nil
}

// LoadConfigFromFile loads a session configuration from a YAML file.
func LoadConfigFromFile(filename string) (*FileConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	return &config, nil
}

// ProcessConfig converts the file form into a validated ProcessConfig.
func (fc *FileConfig) ProcessConfig() (ProcessConfig, error) {
	var config ProcessConfig

	if fc.Command == "" {
		return config, errors.NewValidationError("command is required", nil)
	}
	tokens, err := ParseCommandLine(fc.Command)
	if err != nil {
		return config, err
	}
	if fc.TimeoutSeconds < 0 {
		return config, errors.NewValidationError("timeout cannot be negative", nil).WithContext("timeout_seconds", fc.TimeoutSeconds)
	}

	config = ProcessConfig{
		Command: tokens,
		LogFile: fc.LogFile,
		Restart: fc.Restart,
		Timeout: time.Duration(fc.TimeoutSeconds) * time.Second,
	}
	SetConfigDefaults(&config)

	return config, ValidateConfig(config)
}

// SetConfigDefaults applies default values to a session configuration.
func SetConfigDefaults(config *ProcessConfig) {
	if config.RestartDelay == 0 {
		config.RestartDelay = DefaultRestartDelay
	}
}

// ValidateConfig validates a session configuration.
func ValidateConfig(config ProcessConfig) error {
	if len(config.Command) == 0 {
		return errors.NewValidationError("command cannot be empty", nil)
	}
	if config.Command[0] == "" {
		return errors.NewValidationError("command executable cannot be empty", nil)
	}
	if config.LogFile == "" {
		return errors.NewValidationError("log file path is required", nil)
	}
	if config.Timeout < 0 {
		return errors.NewValidationError("timeout cannot be negative", nil).WithContext("timeout", config.Timeout.String())
	}
	if config.RestartDelay < 0 {
		return errors.NewValidationError("restart delay cannot be negative", nil).WithContext("restart_delay", config.RestartDelay.String())
	}
	return nil
}
