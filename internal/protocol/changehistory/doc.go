// Package changehistory implements the wire format and the verification of
// identity change histories.
//
// # Overview
//
// A change history is an ordered, append-only list of signed changes. Each
// change carries an encoded ChangeData (public key, optional attributes,
// creation time and a link to the previous change) and a signature over the
// SHA-256 digest of that encoding.
//
// # Rules
//
//  1. The root change has no previous link and is signed by the key it
//     introduces. Its truncated hash is the identity's Identifier.
//  2. Change i links to the hash of change i-1 and is signed by the key
//     change i-1 introduced, never by its own key.
//  3. Creation times never go backwards.
//
// # Encoding
//
// Histories are CBOR with core deterministic encoding: [1, [[data, sig]...]].
// Decoding is strict and canonical, so Encode(Decode(b)) == b for every b
// that decodes.
//
// # Errors
//
// Decoding failures wrap domain.ErrDecode, chain failures wrap
// domain.ErrInvalidChange, a wrong identity wraps
// domain.ErrIdentifierMismatch, and Reconcile reports forks and stale
// prefixes with domain.ErrConflictingHistory.
//
// Verify and Import are pure: no vault and no storage is involved.
package changehistory
