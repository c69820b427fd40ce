package domain

import (
	interfaces "idchain/internal/domain/interfaces"
	types "idchain/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Identifier     = types.Identifier
	ChangeHash     = types.ChangeHash
	KeyType        = types.KeyType
	KeyID          = types.KeyID
	PublicKey      = types.PublicKey
	Attributes     = types.Attributes
	ChangeData     = types.ChangeData
	Change         = types.Change
	ChangeHistory  = types.ChangeHistory
	VerifiedChange = types.VerifiedChange
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Vault                = interfaces.Vault
	Verifier             = interfaces.Verifier
	IdentitiesRepository = interfaces.IdentitiesRepository
)

// Key types.
const (
	KeyTypeEd25519 = types.KeyTypeEd25519
	KeyTypeP256    = types.KeyTypeP256
	IdentifierSize = types.IdentifierSize
)

// Errors shared by every layer; test with errors.Is.
var (
	ErrDecode             = types.ErrDecode
	ErrInvalidChange      = types.ErrInvalidChange
	ErrIdentifierMismatch = types.ErrIdentifierMismatch
	ErrVault              = types.ErrVault
	ErrNotFound           = types.ErrNotFound
	ErrConflictingHistory = types.ErrConflictingHistory
	ErrParse              = types.ErrParse
	ErrKeyNotFound        = types.ErrKeyNotFound
)

// ParseIdentifier parses the display form of an Identifier.
func ParseIdentifier(s string) (Identifier, error) { return types.ParseIdentifier(s) }

// ParseKeyType parses a key type name.
func ParseKeyType(s string) (KeyType, error) { return types.ParseKeyType(s) }
