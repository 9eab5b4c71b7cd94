// Package config provides environment-based configuration.
//
// Loads from a .env file when present (godotenv), maps variables onto the
// Config struct, and validates required fields and durations.
package config
