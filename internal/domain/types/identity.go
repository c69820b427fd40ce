package types

import (
	"bytes"
	"maps"
	"time"
)

// Attributes are optional key/value pairs carried by a change.
type Attributes map[string]string

// Clone returns a copy of a; a nil map stays nil.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// ChangeData is the signed payload of a change.
//
// PreviousChange is nil for the root change and otherwise holds the hash of
// the change this one extends.
type ChangeData struct {
	_                struct{} `cbor:",toarray"`
	Version          uint64
	PreviousChange   *ChangeHash
	PrimaryPublicKey PublicKey
	Attributes       Attributes
	CreatedAt        uint64
}

// Change is one signed event of an identity's history. Data holds the
// canonical encoding of a ChangeData.
type Change struct {
	_         struct{} `cbor:",toarray"`
	Data      []byte
	Signature []byte
}

// Equal reports whether c and o are byte-identical.
func (c Change) Equal(o Change) bool {
	return bytes.Equal(c.Data, o.Data) && bytes.Equal(c.Signature, o.Signature)
}

// Clone returns a deep copy of c.
func (c Change) Clone() Change {
	return Change{Data: bytes.Clone(c.Data), Signature: bytes.Clone(c.Signature)}
}

// ChangeHistory is the ordered, root-first sequence of changes of one identity.
type ChangeHistory []Change

// Clone returns a deep copy of h.
func (h ChangeHistory) Clone() ChangeHistory {
	if h == nil {
		return nil
	}
	out := make(ChangeHistory, len(h))
	for i, c := range h {
		out[i] = c.Clone()
	}
	return out
}

// Equal reports whether h and o hold the same changes in the same order.
func (h ChangeHistory) Equal(o ChangeHistory) bool {
	if len(h) != len(o) {
		return false
	}
	for i := range h {
		if !h[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// VerifiedChange is the decoded view of a change whose signature and link
// have been checked.
type VerifiedChange struct {
	Hash       ChangeHash
	PublicKey  PublicKey
	Attributes Attributes
	CreatedAt  time.Time
}
