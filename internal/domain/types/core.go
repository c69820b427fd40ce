package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// IdentifierSize is the length in bytes of an Identifier and of a ChangeHash.
const IdentifierSize = 20

// identifierPrefix starts the text form of every Identifier.
const identifierPrefix = "I"

// ChangeHash is the truncated SHA-256 digest of a change's encoded data.
type ChangeHash [IdentifierSize]byte

// Slice returns the hash as a []byte.
func (h ChangeHash) Slice() []byte { return h[:] }

// String returns the lowercase hex form of the hash.
func (h ChangeHash) String() string { return hex.EncodeToString(h[:]) }

// Identifier names an identity. It is the ChangeHash of the identity's root
// change and is never chosen by a caller.
type Identifier [IdentifierSize]byte

// Slice returns the identifier as a []byte.
func (id Identifier) Slice() []byte { return id[:] }

// IsZero reports whether id is the zero value.
func (id Identifier) IsZero() bool { return id == Identifier{} }

// String returns the display form, e.g. "Ie92f183eb4c324804ef4d62962dea94cf095a265".
func (id Identifier) String() string {
	return identifierPrefix + hex.EncodeToString(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseIdentifier parses the display form produced by Identifier.String.
// Hex digits are accepted in either case.
func ParseIdentifier(s string) (Identifier, error) {
	var id Identifier
	if !strings.HasPrefix(s, identifierPrefix) {
		return id, fmt.Errorf("%w: %q: missing %q prefix", ErrParse, s, identifierPrefix)
	}
	digits := s[len(identifierPrefix):]
	if len(digits) != hex.EncodedLen(IdentifierSize) {
		return id, fmt.Errorf(
			"%w: %q: want %d hex characters, got %d",
			ErrParse, s, hex.EncodedLen(IdentifierSize), len(digits),
		)
	}
	if _, err := hex.Decode(id[:], []byte(digits)); err != nil {
		return Identifier{}, fmt.Errorf("%w: %q: %v", ErrParse, s, err)
	}
	return id, nil
}
