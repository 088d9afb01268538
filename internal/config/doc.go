// Package config manages gitsnap settings.
//
// Settings are layered, highest precedence first:
//   - Command-line flags
//   - GITSNAP_* environment variables
//   - The repository config file at .git/.gitsnap_config (JSON)
//   - Built-in defaults
package config
