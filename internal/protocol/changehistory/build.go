package changehistory

import (
	"time"

	"idchain/internal/domain"
)

// SignFunc signs a change payload with the key authorising the change.
type SignFunc func(payload []byte) ([]byte, error)

// RootData returns the payload of a root change introducing pub.
func RootData(pub domain.PublicKey, attrs domain.Attributes, createdAt time.Time) domain.ChangeData {
	return domain.ChangeData{
		Version:          DataVersion,
		PrimaryPublicKey: pub.Clone(),
		Attributes:       attrs.Clone(),
		CreatedAt:        unixSeconds(createdAt),
	}
}

// NextData returns the payload of a change extending prev with pub. The
// creation time is clamped so that it never precedes prev.
func NextData(
	prev domain.VerifiedChange,
	pub domain.PublicKey,
	attrs domain.Attributes,
	createdAt time.Time,
) domain.ChangeData {
	if createdAt.Before(prev.CreatedAt) {
		createdAt = prev.CreatedAt
	}
	hash := prev.Hash
	return domain.ChangeData{
		Version:          DataVersion,
		PreviousChange:   &hash,
		PrimaryPublicKey: pub.Clone(),
		Attributes:       attrs.Clone(),
		CreatedAt:        unixSeconds(createdAt),
	}
}

// NewChange encodes data and signs it with sign. Root changes must be signed
// by the key they introduce, later changes by the key of the previous change.
func NewChange(data domain.ChangeData, sign SignFunc) (domain.Change, error) {
	encoded, err := EncodeData(data)
	if err != nil {
		return domain.Change{}, err
	}
	sig, err := sign(SigningPayload(encoded))
	if err != nil {
		return domain.Change{}, err
	}
	return domain.Change{Data: encoded, Signature: sig}, nil
}

func unixSeconds(t time.Time) uint64 {
	if t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}
