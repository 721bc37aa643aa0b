package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays MOTEK_* environment variables onto config. Unset
// variables leave fields untouched; malformed values panic.
func parseEnv(config *Config) {
	if err := cleanenv.ReadEnv(config); err != nil {
		panic(err)
	}
}
