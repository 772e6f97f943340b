// Package config handles application configuration loading and validation.
//
// Configuration is read from config.yml on top of Default(), overridden by
// TRANSIT_* environment variables (optionally from a .env file) and validated
// using struct tags. The To* helpers turn the sections into the option
// structs of the routing, realtime, transfer and adjust packages.
package config
