package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skyrmion/antop/internal/errors"
)

func TestValidInterval(t *testing.T) {
	for _, d := range AllowedIntervals {
		assert.True(t, ValidInterval(d), "interval %s should be allowed", d)
	}

	assert.False(t, ValidInterval(0))
	assert.False(t, ValidInterval(3*time.Second))
	assert.False(t, ValidInterval(500*time.Millisecond))
	assert.False(t, ValidInterval(2*time.Minute))
}

func TestIntervalChoices(t *testing.T) {
	choices := IntervalChoices()
	assert.Equal(t, "1s, 2s, 5s, 10s, 30s, 1m0s", choices)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Nodes.Path = "/data/nodes/*"
		return cfg
	}

	tests := []struct {
		name     string
		mutate   func(cfg *Config)
		wantErr  bool
		wantCode string
	}{
		{
			name:    "default config with path is valid",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name: "future version rejected",
			mutate: func(cfg *Config) {
				cfg.Version = CurrentConfigVersion + 1
			},
			wantErr:  true,
			wantCode: errors.ErrConfig,
		},
		{
			name: "empty node path rejected",
			mutate: func(cfg *Config) {
				cfg.Nodes.Path = "  "
			},
			wantErr:  true,
			wantCode: errors.ErrConfig,
		},
		{
			name: "malformed node glob rejected",
			mutate: func(cfg *Config) {
				cfg.Nodes.Path = "/data/nodes/[unclosed"
			},
			wantErr:  true,
			wantCode: errors.ErrDiscovery,
		},
		{
			name: "malformed log glob rejected",
			mutate: func(cfg *Config) {
				cfg.Nodes.Logs = "/logs/[unclosed"
			},
			wantErr:  true,
			wantCode: errors.ErrDiscovery,
		},
		{
			name: "off-menu interval rejected",
			mutate: func(cfg *Config) {
				cfg.Poll.Interval = 3 * time.Second
			},
			wantErr:  true,
			wantCode: errors.ErrConfig,
		},
		{
			name: "every allowed interval accepted",
			mutate: func(cfg *Config) {
				cfg.Poll.Interval = 60 * time.Second
			},
			wantErr: false,
		},
		{
			name: "tiny history size rejected",
			mutate: func(cfg *Config) {
				cfg.History.Size = 1
			},
			wantErr:  true,
			wantCode: errors.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			if tt.wantCode != "" {
				assert.True(t, errors.IsCode(err, tt.wantCode),
					"expected code %s, got: %v", tt.wantCode, err)
			}
		})
	}
}
