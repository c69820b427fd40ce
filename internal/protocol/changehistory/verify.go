package changehistory

import (
	"fmt"
	"math"
	"time"

	"idchain/internal/crypto"
	"idchain/internal/domain"
)

// Verified is the result of a successful verification. History is a private
// copy of the verified changes and Changes holds their decoded view.
type Verified struct {
	Identifier domain.Identifier
	History    domain.ChangeHistory
	Changes    []domain.VerifiedChange
}

// SigningPayload returns the bytes a change signature covers: the SHA-256
// digest of the encoded ChangeData.
func SigningPayload(data []byte) []byte {
	sum := crypto.Digest(data)
	return sum[:]
}

// Import decodes and verifies an encoded history.
//
// If expected is not nil the verified history must name exactly that
// identifier, otherwise the call fails with domain.ErrIdentifierMismatch.
func Import(expected *domain.Identifier, b []byte, verifier domain.Verifier) (Verified, error) {
	history, err := Decode(b)
	if err != nil {
		return Verified{}, err
	}
	return Verify(expected, history, verifier)
}

// Verify checks the signature chain of history.
//
// The root change must be signed by the key it introduces and carry no
// previous link. Every later change must link to the hash of the change
// before it, be signed by the key that change established, and must not be
// dated earlier than it. The first failed check aborts the whole
// verification; nothing is returned on failure.
func Verify(
	expected *domain.Identifier,
	history domain.ChangeHistory,
	verifier domain.Verifier,
) (Verified, error) {
	if len(history) == 0 {
		return Verified{}, fmt.Errorf("%w: %w", domain.ErrInvalidChange, errEmptyHistory)
	}
	if verifier == nil {
		verifier = crypto.Verifier{}
	}

	changes := make([]domain.VerifiedChange, 0, len(history))
	var prevCreatedAt uint64
	for i, change := range history {
		data, err := DecodeData(change.Data)
		if err != nil {
			return Verified{}, fmt.Errorf("change %d: %w", i, err)
		}

		if data.CreatedAt > math.MaxInt64 {
			return Verified{}, fmt.Errorf(
				"%w: change %d creation time %d out of range", domain.ErrInvalidChange, i, data.CreatedAt,
			)
		}

		signer := data.PrimaryPublicKey
		if i == 0 {
			if data.PreviousChange != nil {
				return Verified{}, fmt.Errorf(
					"%w: root change links to %s", domain.ErrInvalidChange, data.PreviousChange,
				)
			}
		} else {
			prev := changes[i-1]
			if data.PreviousChange == nil || *data.PreviousChange != prev.Hash {
				return Verified{}, fmt.Errorf(
					"%w: change %d does not link to change %d", domain.ErrInvalidChange, i, i-1,
				)
			}
			if data.CreatedAt < prevCreatedAt {
				return Verified{}, fmt.Errorf(
					"%w: change %d is dated before change %d", domain.ErrInvalidChange, i, i-1,
				)
			}
			signer = prev.PublicKey
		}

		if !verifier.Verify(signer, SigningPayload(change.Data), change.Signature) {
			return Verified{}, fmt.Errorf(
				"%w: change %d: signature does not verify", domain.ErrInvalidChange, i,
			)
		}

		changes = append(changes, domain.VerifiedChange{
			Hash:       crypto.HashChangeData(change.Data),
			PublicKey:  data.PrimaryPublicKey.Clone(),
			Attributes: data.Attributes.Clone(),
			CreatedAt:  time.Unix(int64(data.CreatedAt), 0).UTC(),
		})
		prevCreatedAt = data.CreatedAt
	}

	id := domain.Identifier(changes[0].Hash)
	if expected != nil && *expected != id {
		return Verified{}, fmt.Errorf(
			"%w: expected %s, history names %s", domain.ErrIdentifierMismatch, expected, id,
		)
	}

	return Verified{
		Identifier: id,
		History:    history.Clone(),
		Changes:    changes,
	}, nil
}
