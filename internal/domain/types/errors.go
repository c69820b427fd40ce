package types

import "errors"

var (
	// ErrDecode is returned for malformed, truncated or non-canonical encodings.
	ErrDecode = errors.New("malformed change history")
	// ErrInvalidChange is returned when a signature or a link does not verify.
	ErrInvalidChange = errors.New("invalid change")
	// ErrIdentifierMismatch is returned when a history names another identity
	// than the one expected by the caller.
	ErrIdentifierMismatch = errors.New("identifier mismatch")
	// ErrVault wraps key generation, signing and lookup failures.
	ErrVault = errors.New("vault failure")
	// ErrNotFound is returned by required repository lookups.
	ErrNotFound = errors.New("identity not found")
	// ErrConflictingHistory is returned when an update does not extend the
	// stored history.
	ErrConflictingHistory = errors.New("conflicting change history")
	// ErrParse is returned for malformed identifier text.
	ErrParse = errors.New("malformed identifier")
	// ErrKeyNotFound is returned when the vault holds no secret for a key.
	ErrKeyNotFound = errors.New("key not found")
)
