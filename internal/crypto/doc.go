// Package crypto exposes the primitives identities are built on.
//
// Contents
//
//   - Ed25519 and ECDSA P-256 key generation, signing and verification
//     (GenerateKey, Sign, Verify, and the per-scheme helpers)
//   - PKCS#8 (de)serialisation of secrets for vault backends
//     (MarshalSecret, ParseSecret)
//   - Change hashing and identifier derivation (HashChangeData, IdentifierOf)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Verification is pure: Verifier checks signatures in-process and never
// touches a vault, so chains can be verified without any I/O.
package crypto
