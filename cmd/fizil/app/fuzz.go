package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fizil/fizil/internal/config"
	"github.com/fizil/fizil/internal/engine"
	"github.com/fizil/fizil/internal/logger"
)

// NewFuzzCommand creates the "fuzz" subcommand.
func NewFuzzCommand() *cobra.Command {
	var (
		targetPath      string
		isolation       string
		input           string
		podmanImage     string
		examplesDir     string
		dictionaryPath  string
		findingsRoot    string
		parallelism     int
		timeoutSeconds  int
		mapSize         int
		crashExitCode   int
		logLevel        string
		logDir          string
		gcovrReportPath string
		progressEvery   int
	)

	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Run one fuzzing session against the configured target.",
		Long: `Run mutates the configured seed corpus through the mutation pipeline
and runs every test case against the target, persisting any input that
crashes it along a newly observed coverage path as a finding.

Configuration is loaded from configs/fizil.yaml; any flag explicitly set on
the command line overrides the corresponding config value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFromDotEnv("."); err != nil {
				return fmt.Errorf("failed to load .env: %w", err)
			}

			var cfg config.Config
			if err := config.Load("fizil", &cfg); err != nil {
				logger.Warn("no config file loaded, using flags only: %v", err)
			}

			applyFlagOverrides(cmd, &cfg, flagValues{
				targetPath:      targetPath,
				isolation:       isolation,
				input:           input,
				podmanImage:     podmanImage,
				examplesDir:     examplesDir,
				dictionaryPath:  dictionaryPath,
				findingsRoot:    findingsRoot,
				parallelism:     parallelism,
				timeoutSeconds:  timeoutSeconds,
				mapSize:         mapSize,
				crashExitCode:   crashExitCode,
				logLevel:        logLevel,
				logDir:          logDir,
				gcovrReportPath: gcovrReportPath,
				progressEvery:   progressEvery,
			})

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if cfg.LogDir != "" {
				if err := logger.InitWithFile(cfg.LogLevel, cfg.LogDir); err != nil {
					return fmt.Errorf("failed to initialize file logger: %w", err)
				}
			} else {
				logger.Init(cfg.LogLevel)
			}
			defer logger.Close()

			outcome, summary, err := engine.Run(context.Background(), cfg)
			if err != nil {
				return err
			}

			if outcome == engine.ExamplesNotFound {
				return fmt.Errorf("no example files found in %s", cfg.ExamplesDir)
			}

			fmt.Printf("tests run: %d, crashes: %d, findings: %d\n",
				summary.TestsRun, summary.CrashesSeen, summary.FindingsCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "target", "", "Path to the target executable or plugin")
	cmd.Flags().StringVar(&isolation, "isolation", "", "Isolation mode: in_process, out_of_process, podman_sandbox")
	cmd.Flags().StringVar(&input, "input", "", "Input delivery mode: command_line, stdin")
	cmd.Flags().StringVar(&podmanImage, "podman-image", "", "Container image for podman_sandbox isolation")
	cmd.Flags().StringVar(&examplesDir, "examples", "", "Directory of seed example files")
	cmd.Flags().StringVar(&dictionaryPath, "dictionary", "", "Path to an AFL-style dictionary file")
	cmd.Flags().StringVar(&findingsRoot, "findings-root", "", "Directory under which findings_<timestamp> is created")
	cmd.Flags().IntVar(&parallelism, "parallelism", 0, "Out-of-process worker pool size (0 = unbounded)")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Per-test timeout in seconds (0 = no timeout)")
	cmd.Flags().IntVar(&mapSize, "map-size", 0, "Coverage bitmap size override")
	cmd.Flags().IntVar(&crashExitCode, "crash-exit-code", 0, "Crash-classification exit code override")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory to also write logs to")
	cmd.Flags().StringVar(&gcovrReportPath, "gcovr-report", "", "gcovr JSON report path for finding triage")
	cmd.Flags().IntVar(&progressEvery, "progress-every", 0, "Log progress every N processed tests (0 = default)")

	return cmd
}

type flagValues struct {
	targetPath      string
	isolation       string
	input           string
	podmanImage     string
	examplesDir     string
	dictionaryPath  string
	findingsRoot    string
	parallelism     int
	timeoutSeconds  int
	mapSize         int
	crashExitCode   int
	logLevel        string
	logDir          string
	gcovrReportPath string
	progressEvery   int
}

// applyFlagOverrides copies each flag the user explicitly set on the command
// line into cfg, leaving config-file values in place otherwise. The log
// level is the one exception: when the config leaves it empty, the flag's
// default is used.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, v flagValues) {
	flags := cmd.Flags()

	if flags.Changed("target") {
		cfg.TargetPath = v.targetPath
	}
	if flags.Changed("isolation") {
		cfg.Isolation = config.IsolationMode(v.isolation)
	}
	if flags.Changed("input") {
		cfg.Input = config.InputMode(v.input)
	}
	if flags.Changed("podman-image") {
		cfg.PodmanImage = v.podmanImage
	}
	if flags.Changed("examples") {
		cfg.ExamplesDir = v.examplesDir
	}
	if flags.Changed("dictionary") {
		cfg.DictionaryPath = v.dictionaryPath
	}
	if flags.Changed("findings-root") {
		cfg.FindingsRoot = v.findingsRoot
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = v.parallelism
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = v.timeoutSeconds
	}
	if flags.Changed("map-size") {
		cfg.MapSize = v.mapSize
	}
	if flags.Changed("crash-exit-code") {
		cfg.CrashExitCode = v.crashExitCode
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = v.logLevel
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = v.logDir
	}
	if flags.Changed("gcovr-report") {
		cfg.GcovrReportPath = v.gcovrReportPath
	}
	if flags.Changed("progress-every") {
		cfg.ProgressEvery = v.progressEvery
	}
}
