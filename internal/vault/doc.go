// Package vault provides the key-storage backends behind domain.Vault.
//
// Secrets never leave a vault: callers receive opaque KeyID handles (random
// UUIDs) and ask the vault to sign with them. Two backends exist:
//
//   - MemoryVault keeps keys in process memory and forgets them on exit.
//   - FileVault keeps one passphrase-sealed JSON record per key on disk.
//
// Both are safe for concurrent use and are meant to be shared between every
// identity that lives in the same process.
package vault
