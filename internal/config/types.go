package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// DefaultNodePattern is the conventional per-user node data directory tree.
const DefaultNodePattern = "~/.local/share/autonomi/node/*"

// DefaultHistorySize is the number of rate samples kept per sparkline series.
const DefaultHistorySize = 60

// Config represents the complete .antop.yaml configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	Nodes   NodesConfig   `yaml:"nodes" mapstructure:"nodes"`
	Poll    PollConfig    `yaml:"poll" mapstructure:"poll"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
}

// NodesConfig controls how node processes are discovered on disk.
type NodesConfig struct {
	// Path is the glob matching node root directories.
	// Supports ~ for the current user's home.
	Path string `yaml:"path" mapstructure:"path"`

	// Logs overrides the log file glob. When empty, logs are expected at
	// <path>/logs/antnode.log under each node root.
	Logs string `yaml:"logs" mapstructure:"logs"`
}

// PollConfig controls the metrics polling cadence.
type PollConfig struct {
	// Interval between poll ticks. Must be one of AllowedIntervals.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Watch enables filesystem watching of the node directory tree to
	// trigger re-discovery between timer passes.
	Watch bool `yaml:"watch" mapstructure:"watch"`
}

// MarshalYAML writes the interval as a duration string ("2s") instead of
// the int64 nanosecond count yaml would emit for time.Duration.
func (p PollConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Interval string `yaml:"interval"`
		Watch    bool   `yaml:"watch"`
	}{
		Interval: p.Interval.String(),
		Watch:    p.Watch,
	}, nil
}

// HistoryConfig controls the per-node sparkline buffers.
type HistoryConfig struct {
	// Size is the fixed capacity of each rate history ring buffer.
	Size int `yaml:"size" mapstructure:"size"`
}

// AllowedIntervals is the discrete set of poll cadences the scheduler accepts.
var AllowedIntervals = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Nodes: NodesConfig{
			Path: DefaultNodePattern,
		},
		Poll: PollConfig{
			Interval: 2 * time.Second,
			Watch:    false,
		},
		History: HistoryConfig{
			Size: DefaultHistorySize,
		},
	}
}

// NodeGlob returns the node root glob with ~ expanded.
func (c *Config) NodeGlob() string {
	return ExpandTilde(c.Nodes.Path)
}

// LogOverrideGlob returns the expanded log file glob override, or "" when
// logs follow the conventional logs/antnode.log subpath under each node root.
func (c *Config) LogOverrideGlob() string {
	if c.Nodes.Logs == "" {
		return ""
	}
	return ExpandTilde(c.Nodes.Logs)
}
