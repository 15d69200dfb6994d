// Package config loads typed configuration from the process environment.
//
// Values come from environment variables, optionally seeded from .env files
// through github.com/joho/godotenv, and are decoded into structs annotated
// with github.com/caarlos0/env/v11 tags. Every configuration type is parsed
// once per process and served from a cache afterwards.
//
//	type Config struct {
//	    Issuer string `env:"OTPGATE_ISSUER" envDefault:"otpgate"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Nested structs are decoded recursively, which lets a binary gather the
// per-package Config types into one aggregate and load it with a single call.
//
// Tests that change the environment call Reset to drop the cache.
package config
