// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (identifiers, changes, histories, keys), the
// sentinel errors every layer wraps, and the Vault and IdentitiesRepository
// contracts. It holds no cryptography and no I/O.
package domain
