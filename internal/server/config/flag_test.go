package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	defaults := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name        string
		args        []string
		expected    *Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-e", "prod", "-a", "127.0.0.1:9090", "-g", "127.0.0.1:50052", "-d", "db", "-k", "memory",
				"-s", "secret", "-t", "60", "-r", "7", "-R", "2", "-L", "3", "-b", "10", "-w", "5", "-x=true",
			},
			expected: &Config{
				Env:                         "prod",
				EndpointAddrHTTP:            "127.0.0.1:9090",
				EndpointAddrGRPC:            "127.0.0.1:50052",
				DatabaseDSN:                 "db",
				StorageDriver:               StorageMemory,
				SecretKey:                   "secret",
				AccessTokenValidityDuration: time.Hour,
				RefreshTokenValidityDays:    7,
				RegisterLimitPerHour:        2,
				LoginLimitPerHour:           3,
				BcryptCost:                  10,
				SweepInterval:               5 * time.Minute,
				TrustProxyHeaders:           true,
				ShutdownTimeout:             30 * time.Second,
			},
		},
		{
			name:     "no flags keeps defaults",
			args:     []string{"-c", "ignored.json"},
			expected: defaults(),
		},
		{
			name:        "bad integer panics",
			args:        []string{"-L", "lots"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config, tt.args) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config, tt.args) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_SubMinuteDurationSurvives(t *testing.T) {
	config := &Config{AccessTokenValidityDuration: 90 * time.Second, SweepInterval: 30 * time.Second}

	parseFlags(config, []string{"-L", "4"})

	assert.Equal(t, 90*time.Second, config.AccessTokenValidityDuration)
	assert.Equal(t, 30*time.Second, config.SweepInterval)
	assert.Equal(t, 4, config.LoginLimitPerHour)
}
