// Package identity assembles verified identities and creates new ones.
//
// Identity is the verified view of one identifier's change history. Keys
// mints root and rotation changes with keys held in a domain.Vault, and
// Creation ties Keys to an IdentitiesRepository: it creates and persists
// identities, imports encoded histories and reloads stored ones.
//
// Anything loaded from a repository or received as bytes is verified again
// before an Identity is handed out.
package identity
