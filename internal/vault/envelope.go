package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"idchain/internal/util/memzero"
)

const (
	// The current supported version of the sealed secret format stored on disk.
	envelopeFormatVersion = 1
)

var (
	// Returned when the passphrase is incorrect or the ciphertext has been modified / corrupted.
	errWrongPassphrase = errors.New("wrong passphrase or corrupted key record")
)

// ScryptParams are the key-derivation cost parameters.
type ScryptParams struct {
	N, R, P int
}

// DefaultScryptParams are the interactive-login parameters recommended by
// the scrypt package.
func DefaultScryptParams() ScryptParams { return ScryptParams{N: 1 << 15, R: 8, P: 1} }

// envelope is the sealed secret as stored inside a key record.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// seal derives a key from passphrase and encrypts raw. ad is bound to the
// ciphertext in addition to the salt.
func seal(passphrase, raw, ad []byte, params ScryptParams) (envelope, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return envelope{}, err
	}
	aead, err := deriveAEAD(passphrase, salt[:], params)
	if err != nil {
		return envelope{}, err
	}
	var nonce [chacha20poly1305.NonceSize]byte // zero nonce; salt-bound key is never reused
	ct := aead.Seal(nil, nonce[:], raw, associated(salt[:], ad))

	return envelope{
		V:      envelopeFormatVersion,
		Salt:   salt[:],
		N:      params.N,
		R:      params.R,
		P:      params.P,
		Cipher: ct,
	}, nil
}

// open decrypts env. The caller owns the returned plaintext and should wipe it.
func open(passphrase []byte, env envelope, ad []byte) ([]byte, error) {
	if env.V > envelopeFormatVersion {
		return nil, fmt.Errorf("unsupported key record version %d", env.V)
	}
	aead, err := deriveAEAD(passphrase, env.Salt, ScryptParams{N: env.N, R: env.R, P: env.P})
	if err != nil {
		return nil, err
	}
	var nonce [chacha20poly1305.NonceSize]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, associated(env.Salt, ad))
	if err != nil {
		return nil, errWrongPassphrase
	}
	return pt, nil
}

func deriveAEAD(passphrase, salt []byte, params ScryptParams) (cipher.AEAD, error) {
	key, err := scrypt.Key(passphrase, salt, params.N, params.R, params.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)
	return chacha20poly1305.New(key)
}

func associated(salt, ad []byte) []byte {
	out := make([]byte, 0, len(salt)+len(ad))
	out = append(out, salt...)
	return append(out, ad...)
}
