// Package config loads and validates Haven Core configuration.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by HAVEN_* environment variables. Secrets (JWT
// signing key, broker credentials, telemetry tokens) should always come
// from the environment in production.
package config
