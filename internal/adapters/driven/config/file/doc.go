// Package file loads loresync configuration from a TOML file.
//
// Values come from ~/.loresync/config.toml (or an explicit --config path),
// with LORESYNC_* environment variables layered on top and a local .env
// loaded first for development. Loading happens once at startup; the rest
// of the program receives plain domain configuration values.
package file
