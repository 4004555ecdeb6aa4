// Package config provides configuration loading and validation for locstats.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort      = errors.New("invalid server port")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidTheme     = errors.New("invalid plot theme")
	ErrInvalidChartSize = errors.New("chart width and height must be positive")
	ErrInvalidDebounce  = errors.New("watch debounce must be positive")
	ErrNoInput          = errors.New("neither input.path nor cache.path is set")
	ErrInvalidLimit     = errors.New("default file limit must be positive")
	ErrInvalidSampling  = errors.New("telemetry sample ratio must be within [0, 1]")
)

// Default configuration values.
const (
	DefaultInputPath    = "loc.csv"
	DefaultCachePath    = "commit-data.json"
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
	DefaultChartWidth   = 1000
	DefaultChartHeight  = 600
	DefaultFileLimit    = 20
	DefaultTheme        = "dark"
	DefaultTitle        = "Commit History"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultDebounce     = 250 * time.Millisecond
	maxPort             = 65535
)

// EnvPrefix is the prefix of environment overrides, e.g. LOCSTATS_SERVER_PORT.
const EnvPrefix = "LOCSTATS"

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validThemes     = []string{"dark", "light"}
)

// Config holds all configuration for locstats.
type Config struct {
	Input     InputConfig     `mapstructure:"input"     yaml:"input"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	Server    ServerConfig    `mapstructure:"server"    yaml:"server"`
	Watch     WatchConfig     `mapstructure:"watch"     yaml:"watch"`
	Plot      PlotConfig      `mapstructure:"plot"      yaml:"plot"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// InputConfig describes the raw line log.
type InputConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
	// CommitURLBase is prefixed to commit ids to build commit links.
	CommitURLBase string `mapstructure:"commit_url_base" yaml:"commit_url_base"`
}

// CacheConfig describes the precomputed cache.
type CacheConfig struct {
	Path    string `mapstructure:"path"    yaml:"path"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	// Write refreshes the cache after every raw ingest.
	Write bool `mapstructure:"write" yaml:"write"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"          yaml:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"  yaml:"idle_timeout"`
	Port         int           `mapstructure:"port"          yaml:"port"`
	FileLimit    int           `mapstructure:"file_limit"    yaml:"file_limit"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WatchConfig controls reloading when the input log changes.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"  yaml:"enabled"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// PlotConfig controls the HTML report.
type PlotConfig struct {
	Theme  string `mapstructure:"theme"  yaml:"theme"`
	Title  string `mapstructure:"title"  yaml:"title"`
	Width  int    `mapstructure:"width"  yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	// OTLPHeaders is a "key=value,key=value" list sent as gRPC metadata.
	OTLPHeaders  string  `mapstructure:"otlp_headers"  yaml:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure" yaml:"otlp_insecure"`
	Environment  string  `mapstructure:"environment"   yaml:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  yaml:"sample_ratio"`
}

// CachePath returns the cache path, or "" when the cache is disabled.
func (c *Config) CachePath() string {
	if !c.Cache.Enabled {
		return ""
	}

	return c.Cache.Path
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for locstats.yaml in the working directory
// and in $HOME/.config/locstats; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("locstats")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/locstats")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Input: InputConfig{Path: DefaultInputPath},
		Cache: CacheConfig{Path: DefaultCachePath, Enabled: true},
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			FileLimit:    DefaultFileLimit,
		},
		Watch: WatchConfig{Debounce: DefaultDebounce},
		Plot: PlotConfig{
			Theme:  DefaultTheme,
			Title:  DefaultTitle,
			Width:  DefaultChartWidth,
			Height: DefaultChartHeight,
		},
		Logging: LoggingConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// setDefaults registers Default() with viper so env overrides apply to every key.
func setDefaults(viperCfg *viper.Viper) {
	d := Default()

	viperCfg.SetDefault("input.path", d.Input.Path)
	viperCfg.SetDefault("input.commit_url_base", d.Input.CommitURLBase)

	viperCfg.SetDefault("cache.path", d.Cache.Path)
	viperCfg.SetDefault("cache.enabled", d.Cache.Enabled)
	viperCfg.SetDefault("cache.write", d.Cache.Write)

	viperCfg.SetDefault("server.host", d.Server.Host)
	viperCfg.SetDefault("server.port", d.Server.Port)
	viperCfg.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	viperCfg.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", d.Server.IdleTimeout)
	viperCfg.SetDefault("server.file_limit", d.Server.FileLimit)

	viperCfg.SetDefault("watch.enabled", d.Watch.Enabled)
	viperCfg.SetDefault("watch.debounce", d.Watch.Debounce)

	viperCfg.SetDefault("plot.theme", d.Plot.Theme)
	viperCfg.SetDefault("plot.title", d.Plot.Title)
	viperCfg.SetDefault("plot.width", d.Plot.Width)
	viperCfg.SetDefault("plot.height", d.Plot.Height)

	viperCfg.SetDefault("logging.level", d.Logging.Level)
	viperCfg.SetDefault("logging.format", d.Logging.Format)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Input.Path == "" && c.CachePath() == "" {
		return ErrNoInput
	}

	if c.Server.Port <= 0 || c.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Server.Port)
	}

	if c.Server.FileLimit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, c.Server.FileLimit)
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if !slices.Contains(validLogFormats, strings.ToLower(c.Logging.Format)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if !slices.Contains(validThemes, strings.ToLower(c.Plot.Theme)) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Plot.Theme)
	}

	if c.Plot.Width <= 0 || c.Plot.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidChartSize, c.Plot.Width, c.Plot.Height)
	}

	if c.Watch.Enabled && c.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Watch.Debounce)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampling, c.Telemetry.SampleRatio)
	}

	return nil
}
