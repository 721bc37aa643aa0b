package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/motek/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-e string   environment (local, dev, prod)
//	-a string   HTTP bind address
//	-g string   gRPC health bind address
//	-d string   PostgreSQL DSN
//	-k string   storage driver (postgres, memory)
//	-s string   access token signing secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, days
//	-R int      registrations per IP per hour
//	-L int      login attempts per IP per hour
//	-b int      bcrypt cost
//	-w int      sweep interval, minutes
//	-x bool     trust X-Forwarded-For / X-Real-IP (pass as -x=true)
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-e", "-a", "-g", "-d", "-k", "-s", "-t", "-r", "-R", "-L", "-b", "-w", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Env, "e", config.Env, "environment (local, dev, prod)")
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageDriver, "k", config.StorageDriver, "storage driver (postgres, memory)")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "access token signing secret")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.IntVar(&config.RefreshTokenValidityDays, "r", config.RefreshTokenValidityDays, "refresh token validity (in days)")
	fs.IntVar(&config.RegisterLimitPerHour, "R", config.RegisterLimitPerHour, "registrations per IP per hour")
	fs.IntVar(&config.LoginLimitPerHour, "L", config.LoginLimitPerHour, "login attempts per IP per hour")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")

	sweepInterval := fs.Int("w", int(config.SweepInterval.Minutes()), "sweep interval (in minutes)")

	fs.BoolVar(&config.TrustProxyHeaders, "x", config.TrustProxyHeaders, "trust proxy headers for client IP")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Minute flags only override durations when given, so sub-minute values
	// from earlier layers survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidity) * time.Minute
		case "w":
			config.SweepInterval = time.Duration(*sweepInterval) * time.Minute
		}
	})
}
