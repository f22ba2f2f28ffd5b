// Package config handles replay configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/log"
	"firestige.xyz/vkreplay/internal/sequencer"
)

// EnvPrefix prefixes environment overrides, e.g. VKREPLAY_REPLAY_NUM_LOOPS.
const EnvPrefix = "VKREPLAY"

// Config is the full replay configuration. Values come from defaults, an
// optional YAML file, VKREPLAY_* environment variables and command line
// flags, in increasing order of precedence.
type Config struct {
	Replay    ReplaySettings            `mapstructure:"replay"`
	Log       LogConfig                 `mapstructure:"log"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Report    ReportConfig              `mapstructure:"report"`
	Replayers map[string]map[string]any `mapstructure:"replayers"` // per-replayer options, keyed by replayer name
}

// ─── Replay ───

// ReplaySettings are the user-facing replay knobs.
type ReplaySettings struct {
	TraceFile      string `mapstructure:"trace_file"`
	NumLoops       int    `mapstructure:"num_loops"`
	LoopStartFrame int    `mapstructure:"loop_start_frame"` // -1 = trace start
	LoopEndFrame   int    `mapstructure:"loop_end_frame"`   // -1 = trace end
	Screenshot     string `mapstructure:"screenshot"`       // comma separated frame numbers
	Verbosity      string `mapstructure:"verbosity"`        // quiet / errors / warnings / full / debug
}

// Loop returns the sequencer loop settings.
func (r ReplaySettings) Loop() sequencer.Settings {
	return sequencer.Settings{
		NumLoops:       r.NumLoops,
		LoopStartFrame: r.LoopStartFrame,
		LoopEndFrame:   r.LoopEndFrame,
	}
}

// ─── Log ───

// LogConfig contains logging settings. The level follows replay.verbosity.
type LogConfig struct {
	Pattern string           `mapstructure:"pattern"`
	Time    string           `mapstructure:"time"`
	File    FileOutputConfig `mapstructure:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Path          string `mapstructure:"path"` // empty = disabled
	MaxSizeMB     int    `mapstructure:"max_size_mb"`
	MaxAgeDays    int    `mapstructure:"max_age_days"`
	MaxBackups    int    `mapstructure:"max_backups"`
	Compress      bool   `mapstructure:"compress"`
	RotateOnStart bool   `mapstructure:"rotate_on_start"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ─── Report ───

// ReportConfig controls the run summary file.
type ReportConfig struct {
	Path string `mapstructure:"path"` // empty = no report file
}

// ─── Loading ───

// flagKeys maps command line flag names to configuration keys.
var flagKeys = map[string]string{
	"TraceFile":      "replay.trace_file",
	"NumLoops":       "replay.num_loops",
	"LoopStartFrame": "replay.loop_start_frame",
	"LoopEndFrame":   "replay.loop_end_frame",
	"Screenshot":     "replay.screenshot",
	"Verbosity":      "replay.verbosity",
	"log-file":       "log.file.path",
	"metrics-listen": "metrics.listen",
	"report":         "report.path",
}

// Load builds the configuration. path may be empty, in which case only
// defaults, environment and flags apply. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path %s: %w", path, err)
		}
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
		// --metrics-listen alone is enough to turn the exporter on.
		if f := flags.Lookup("metrics-listen"); f != nil && f.Changed {
			v.Set("metrics.enabled", true)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Replay.TraceFile != "" {
		expanded, err := homedir.Expand(cfg.Replay.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("%w: trace file %s: %v", core.ErrConfigInvalid, cfg.Replay.TraceFile, err)
		}
		cfg.Replay.TraceFile = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	// Replay defaults
	v.SetDefault("replay.trace_file", "")
	v.SetDefault("replay.num_loops", 1)
	v.SetDefault("replay.loop_start_frame", sequencer.NoFrame)
	v.SetDefault("replay.loop_end_frame", sequencer.NoFrame)
	v.SetDefault("replay.screenshot", "")
	v.SetDefault("replay.verbosity", "errors")

	// Log defaults
	v.SetDefault("log.pattern", log.DefaultPattern)
	v.SetDefault("log.time", log.DefaultTime)
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_age_days", 7)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.compress", false)
	v.SetDefault("log.file.rotate_on_start", false)

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9464")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("report.path", "")
}

// Validate checks the configuration. Every error wraps core.ErrConfigInvalid.
func (cfg *Config) Validate() error {
	r := &cfg.Replay
	if r.TraceFile == "" {
		return fmt.Errorf("%w: trace file is required", core.ErrConfigInvalid)
	}
	if r.NumLoops < 1 {
		return fmt.Errorf("%w: loop count %d must be at least 1", core.ErrConfigInvalid, r.NumLoops)
	}
	if r.LoopStartFrame < sequencer.NoFrame {
		return fmt.Errorf("%w: invalid loop start frame %d", core.ErrConfigInvalid, r.LoopStartFrame)
	}
	if r.LoopEndFrame < sequencer.NoFrame {
		return fmt.Errorf("%w: invalid loop end frame %d", core.ErrConfigInvalid, r.LoopEndFrame)
	}
	if r.LoopEndFrame != sequencer.NoFrame && r.LoopEndFrame <= r.LoopStartFrame {
		return fmt.Errorf("%w: loop end frame %d must be after loop start frame %d",
			core.ErrConfigInvalid, r.LoopEndFrame, r.LoopStartFrame)
	}
	if _, err := core.ParseFrameList(r.Screenshot); err != nil {
		return fmt.Errorf("%w: screenshot: %v", core.ErrConfigInvalid, err)
	}
	if _, err := log.ParseVerbosity(r.Verbosity); err != nil {
		return fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
	}
	if cfg.Log.File.Path != "" && cfg.Log.File.MaxSizeMB < 0 {
		return fmt.Errorf("%w: log.file.max_size_mb must not be negative", core.ErrConfigInvalid)
	}
	return nil
}

// LoggerConfig converts the log settings and replay verbosity into the
// logger's own configuration.
func (cfg *Config) LoggerConfig() (*log.LoggerConfig, error) {
	level, err := log.ParseVerbosity(cfg.Replay.Verbosity)
	if err != nil {
		return nil, err
	}
	path := cfg.Log.File.Path
	if path != "" {
		if path, err = homedir.Expand(path); err != nil {
			return nil, fmt.Errorf("failed to expand log file path: %w", err)
		}
	}
	return &log.LoggerConfig{
		Pattern: cfg.Log.Pattern,
		Time:    cfg.Log.Time,
		Level:   level,
		File: log.FileAppenderOpt{
			Filename:      path,
			MaxSize:       cfg.Log.File.MaxSizeMB,
			MaxBackups:    cfg.Log.File.MaxBackups,
			MaxAge:        cfg.Log.File.MaxAgeDays,
			Compress:      cfg.Log.File.Compress,
			RotateOnStart: cfg.Log.File.RotateOnStart,
		},
	}, nil
}
