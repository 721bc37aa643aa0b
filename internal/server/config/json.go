package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/motek/internal/flagx"
	"github.com/dmitrijs2005/motek/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "24h"-style strings or integer nanoseconds.
type JsonConfig struct {
	Env                         string         `json:"env"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	StorageDriver               string         `json:"storage_driver"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDays    int            `json:"refresh_token_validity_days"`
	RegisterLimitPerHour        int            `json:"register_limit_per_hour"`
	LoginLimitPerHour           int            `json:"login_limit_per_hour"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	SweepInterval               timex.Duration `json:"sweep_interval"`
	TrustProxyHeaders           bool           `json:"trust_proxy_headers"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the file named by -c/-config onto config. Keys missing
// from the file keep their current values. An unreadable or invalid file
// panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := fromConfig(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func fromConfig(config *Config) *JsonConfig {
	return &JsonConfig{
		Env:                         config.Env,
		EndpointAddrHTTP:            config.EndpointAddrHTTP,
		EndpointAddrGRPC:            config.EndpointAddrGRPC,
		DatabaseDSN:                 config.DatabaseDSN,
		StorageDriver:               config.StorageDriver,
		SecretKey:                   config.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: config.AccessTokenValidityDuration},
		RefreshTokenValidityDays:    config.RefreshTokenValidityDays,
		RegisterLimitPerHour:        config.RegisterLimitPerHour,
		LoginLimitPerHour:           config.LoginLimitPerHour,
		BcryptCost:                  config.BcryptCost,
		SweepInterval:               timex.Duration{Duration: config.SweepInterval},
		TrustProxyHeaders:           config.TrustProxyHeaders,
		ShutdownTimeout:             timex.Duration{Duration: config.ShutdownTimeout},
	}
}

func (c *JsonConfig) apply(config *Config) {
	config.Env = c.Env
	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.DatabaseDSN = c.DatabaseDSN
	config.StorageDriver = c.StorageDriver
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDays = c.RefreshTokenValidityDays
	config.RegisterLimitPerHour = c.RegisterLimitPerHour
	config.LoginLimitPerHour = c.LoginLimitPerHour
	config.BcryptCost = c.BcryptCost
	config.SweepInterval = c.SweepInterval.Duration
	config.TrustProxyHeaders = c.TrustProxyHeaders
	config.ShutdownTimeout = c.ShutdownTimeout.Duration
}
