package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "local", c.Env)
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, StoragePostgres, c.StorageDriver)
	assert.Empty(t, c.SecretKey)
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 30, c.RefreshTokenValidityDays)
	assert.Equal(t, 1, c.RegisterLimitPerHour)
	assert.Equal(t, 1, c.LoginLimitPerHour)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, time.Hour, c.SweepInterval)
	assert.False(t, c.TrustProxyHeaders)
	assert.Equal(t, 30*time.Second, c.ShutdownTimeout)
}

func TestRefreshTokenValidity(t *testing.T) {
	c := Config{RefreshTokenValidityDays: 30}
	assert.Equal(t, 720*time.Hour, c.RefreshTokenValidity())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.LoadDefaults()
		c.SecretKey = "s3cr3t"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults with secret", mutate: func(c *Config) {}},
		{name: "empty secret", mutate: func(c *Config) { c.SecretKey = "" }, wantErr: "secret key is empty"},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, wantErr: "access token validity"},
		{name: "zero refresh days", mutate: func(c *Config) { c.RefreshTokenValidityDays = 0 }, wantErr: "refresh token validity"},
		{name: "negative limit", mutate: func(c *Config) { c.LoginLimitPerHour = -1 }, wantErr: "rate limits"},
		{name: "zero limit allowed", mutate: func(c *Config) { c.RegisterLimitPerHour = 0 }},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.BcryptCost = 3 }, wantErr: "bcrypt cost"},
		{name: "zero sweep interval", mutate: func(c *Config) { c.SweepInterval = 0 }, wantErr: "sweep interval"},
		{name: "unknown driver", mutate: func(c *Config) { c.StorageDriver = "mysql" }, wantErr: "unknown storage driver"},
		{name: "memory driver", mutate: func(c *Config) { c.StorageDriver = StorageMemory }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_LayersInOrder(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_http":   ":9000",
		"login_limit_per_hour": 5,
		"secret_key":           "from-file",
	})

	t.Setenv("MOTEK_SECRET_KEY", "from-env")
	t.Setenv("MOTEK_LOGIN_LIMIT_PER_HOUR", "7")

	os.Args = []string{"motek", "-c", path, "-L", "9"}

	c := LoadConfig()
	require.NotNil(t, c)

	assert.Equal(t, ":9000", c.EndpointAddrHTTP, "file overrides default")
	assert.Equal(t, "from-env", c.SecretKey, "env overrides file")
	assert.Equal(t, 9, c.LoginLimitPerHour, "flag overrides env")
	assert.Equal(t, 1, c.RegisterLimitPerHour, "untouched fields keep defaults")
}
