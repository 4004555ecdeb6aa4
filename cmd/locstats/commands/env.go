package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/locstats/pkg/config"
	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/observability"
	"github.com/Sumatoshi-tech/locstats/pkg/terminal"
	"github.com/Sumatoshi-tech/locstats/pkg/version"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat indicates an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

// environment is the per-invocation state shared by the commands.
type environment struct {
	cfg     *config.Config
	logger  *slog.Logger
	noColor bool
}

// loadEnvironment reads the config named by --config and applies the global
// flag overrides. Logs go to the command's stderr.
func loadEnvironment(cmd *cobra.Command, mode observability.AppMode) (*environment, error) {
	configPath, _ := cmd.Flags().GetString(flagConfig)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if input, _ := cmd.Flags().GetString(flagInput); input != "" {
		cfg.Input.Path = input
	}

	noColor, _ := cmd.Flags().GetBool(flagNoColor)

	obsCfg, err := observabilityConfig(cfg, mode, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:     cfg,
		logger:  observability.NewLogger(obsCfg),
		noColor: noColor,
	}, nil
}

// observabilityConfig maps the logging and telemetry sections onto an
// observability.Config.
func observabilityConfig(cfg *config.Config, mode observability.AppMode, logOutput io.Writer) (observability.Config, error) {
	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = strings.EqualFold(cfg.Logging.Format, "json")
	obsCfg.LogOutput = logOutput

	return obsCfg, nil
}

func (e *environment) loader() *dataset.Loader {
	return dataset.NewLoader(dataset.Options{
		SourcePath: e.cfg.Input.Path,
		CachePath:  e.cfg.CachePath(),
		WriteCache: e.cfg.Cache.Write,
		URLBase:    e.cfg.Input.CommitURLBase,
		Logger:     e.logger,
	})
}

func (e *environment) load(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := e.loader().Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return ds, nil
}

func (e *environment) renderer(out io.Writer) *terminal.Renderer {
	cfg := terminal.NewConfig()
	cfg.NoColor = cfg.NoColor || e.noColor

	return terminal.NewRenderer(out, cfg)
}

func validateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q (want text, json or yaml)", ErrUnknownFormat, format)
	}
}

// writeStructured encodes value as JSON or YAML.
func writeStructured(w io.Writer, format string, value any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		encodeErr := enc.Encode(value)
		if encodeErr != nil {
			return fmt.Errorf("encode json: %w", encodeErr)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		encodeErr := enc.Encode(value)
		if encodeErr != nil {
			return fmt.Errorf("encode yaml: %w", encodeErr)
		}

		closeErr := enc.Close()
		if closeErr != nil {
			return fmt.Errorf("encode yaml: %w", closeErr)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, flagFormat, "f", FormatText, "Output format: text, json, yaml")
}
