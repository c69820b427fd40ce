// Package commands defines the idchain CLI.
//
// Commands
//
//   - create   Create an identity with a fresh or existing vault key
//   - list     List stored identifiers
//   - show     Print the verified change history of a stored identity
//   - export   Write the encoded change history of a stored identity
//   - import   Verify an encoded change history and store it
//   - verify   Verify an encoded change history without storing it
//   - rotate   Append a change introducing a fresh key
//
// # Implementation
//
// The root command loads the layered configuration, sets up logging and
// tracing, and opens the vault and repository before any subcommand runs.
// Everything it opens is released when Execute returns, also on failure.
package commands
