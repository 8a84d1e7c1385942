// Package config loads, normalizes, and validates rizzle configuration data.
//
// Values come from a TOML file, then from the environment (RIZZLE_SID,
// RIZZLE_ARL, RIZZLE_API_TOKEN, RIZZLE_LOG_LEVEL, ...), which may itself be
// seeded from a .env file. Paths are expanded, including the tilde shortcut.
package config
