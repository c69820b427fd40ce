// Package app wires application dependencies for the CLI.
//
// It loads Config from defaults, an optional TOML file and the environment,
// builds the logger, and opens the vault and repository backends the config
// names, exposing them and the identity services via the Wire struct.
package app
