// Package config loads and validates a fuzzing run's configuration: target
// binary, isolation and input-delivery mode, example/dictionary paths, and
// the ambient logging/coverage knobs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// IsolationMode selects whether the target runs in-process (a loaded Go
// plugin) or out-of-process (a spawned child, optionally sandboxed).
type IsolationMode string

const (
	IsolationInProcess     IsolationMode = "in_process"
	IsolationOutOfProcess  IsolationMode = "out_of_process"
	IsolationPodmanSandbox IsolationMode = "podman_sandbox"
)

// InputMode selects how test bytes reach an out-of-process target.
type InputMode string

const (
	InputCommandLine InputMode = "command_line"
	InputStdin       InputMode = "stdin"
)

// Config is the full configuration for one fuzzing run.
type Config struct {
	// TargetPath is the executable (or, for in-process, the Go plugin) to
	// fuzz.
	TargetPath string `mapstructure:"target_path"`

	// Isolation selects how the target is executed.
	Isolation IsolationMode `mapstructure:"isolation"`

	// Input selects how bytes are delivered out-of-process.
	Input InputMode `mapstructure:"input"`

	// PodmanImage is the container image to run the target in, required
	// when Isolation is IsolationPodmanSandbox.
	PodmanImage string `mapstructure:"podman_image"`

	// ExamplesDir holds the seed corpus fed to the mutation pipeline.
	ExamplesDir string `mapstructure:"examples_dir"`

	// DictionaryPath is an optional AFL-style token dictionary.
	DictionaryPath string `mapstructure:"dictionary_path"`

	// FindingsRoot is the directory under which findings_<timestamp> is
	// created.
	FindingsRoot string `mapstructure:"findings_root"`

	// Parallelism bounds the out-of-process worker pool size. Ignored for
	// in-process runs, which are always serial.
	Parallelism int `mapstructure:"parallelism"`

	// TimeoutSeconds bounds each test run of the out_of_process isolation
	// mode; 0 means no timeout. In-process and podman_sandbox runs are not
	// bounded by it.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// MapSize overrides the coverage bitmap size; 0 uses the default.
	MapSize int `mapstructure:"map_size"`

	// CrashExitCode overrides the platform unhandled-exception sentinel
	// used to classify crashes; 0 uses the default (.NET's).
	CrashExitCode int `mapstructure:"crash_exit_code"`

	// LogLevel and LogDir configure the ambient logger.
	LogLevel string `mapstructure:"log_level"`
	LogDir   string `mapstructure:"log_dir"`

	// GcovrReportPath, if set, enables finding triage annotation (§11.7).
	GcovrReportPath string `mapstructure:"gcovr_report_path"`

	// ProgressEvery controls how often the default status sink logs (every
	// N processed results). 0 uses the default.
	ProgressEvery int `mapstructure:"progress_every"`
}

// Validate checks the config for internal consistency, collecting every
// problem found rather than stopping at the first.
func (c *Config) Validate() error {
	var err error

	if c.TargetPath == "" {
		err = multierr.Append(err, fmt.Errorf("target_path is required"))
	}
	if c.ExamplesDir == "" {
		err = multierr.Append(err, fmt.Errorf("examples_dir is required"))
	}
	if c.FindingsRoot == "" {
		err = multierr.Append(err, fmt.Errorf("findings_root is required"))
	}

	switch c.Isolation {
	case IsolationInProcess, IsolationOutOfProcess, IsolationPodmanSandbox, "":
	default:
		err = multierr.Append(err, fmt.Errorf("isolation %q is not one of in_process, out_of_process, podman_sandbox", c.Isolation))
	}

	switch c.Input {
	case InputCommandLine, InputStdin, "":
	default:
		err = multierr.Append(err, fmt.Errorf("input %q is not one of command_line, stdin", c.Input))
	}

	if c.Isolation == IsolationPodmanSandbox && c.PodmanImage == "" {
		err = multierr.Append(err, fmt.Errorf("podman_image is required when isolation is podman_sandbox"))
	}

	if c.Parallelism < 0 {
		err = multierr.Append(err, fmt.Errorf("parallelism must be >= 0, got %d", c.Parallelism))
	}

	return err
}

var envVarPattern = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}|\$[A-Za-z_][A-Za-z0-9_]*`)

// resolveEnvVars substitutes ${VAR} and $VAR placeholders from the process
// environment, leaving anything unresolvable untouched.
func resolveEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}
		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return match
	})
}

func resolveInMap(m map[string]interface{}) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			if resolved := resolveEnvVars(val); resolved != val {
				m[k] = resolved
			}
		case map[string]interface{}:
			resolveInMap(val)
		case []interface{}:
			resolveInSlice(val)
		}
	}
}

func resolveInSlice(s []interface{}) {
	for i, v := range s {
		switch val := v.(type) {
		case string:
			s[i] = resolveEnvVars(val)
		case map[string]interface{}:
			resolveInMap(val)
		}
	}
}

// LoadEnvFromDotEnv loads KEY=value pairs from dir/.env into the process
// environment, without overriding anything already set. Missing files are
// not an error.
func LoadEnvFromDotEnv(dir string) error {
	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(envPath)
	if err != nil {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	for lineNum, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return fmt.Errorf("invalid line in .env file at line %d: missing '='", lineNum+1)
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return nil
}

// Load reads configFileName (a YAML file name, without extension) from the
// "configs" directory, searched at a few conventional relative paths so
// loading also works from within `go test`'s package working directories,
// and unmarshals its top-level "fizil" key into cfg.
func Load(configFileName string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", configFileName, err)
	}

	settings := v.AllSettings()
	resolveInMap(settings)
	for key, value := range settings {
		v.Set(key, value)
	}

	if err := v.UnmarshalKey("fizil", cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config %s: %w", configFileName, err)
	}

	return nil
}
