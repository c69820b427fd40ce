package changehistory

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"idchain/internal/domain"
)

const (
	// FormatVersion is the version of the history envelope.
	FormatVersion = 1
	// DataVersion is the version of ChangeData produced by this package.
	DataVersion = 1
)

var errEmptyHistory = errors.New("empty change history")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("changehistory: cbor encoder: %w", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		IndefLength:       cbor.IndefLengthForbidden,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("changehistory: cbor decoder: %w", err))
	}
}

// envelope is the top-level wire structure: [version, [change...]].
type envelope struct {
	_       struct{} `cbor:",toarray"`
	Version uint64
	Changes []domain.Change
}

// Encode returns the canonical encoding of history.
func Encode(history domain.ChangeHistory) ([]byte, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("encode: %w", errEmptyHistory)
	}
	b, err := encMode.Marshal(envelope{Version: FormatVersion, Changes: history})
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return b, nil
}

// Decode parses an encoded history without verifying it.
//
// Only canonical encodings are accepted, so Encode(Decode(b)) == b for every
// b that decodes. All failures wrap domain.ErrDecode.
func Decode(b []byte) (domain.ChangeHistory, error) {
	var env envelope
	if err := strictUnmarshal(b, &env); err != nil {
		return nil, err
	}
	if env.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", domain.ErrDecode, env.Version)
	}
	if len(env.Changes) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, errEmptyHistory)
	}
	return domain.ChangeHistory(env.Changes), nil
}

// EncodeData returns the canonical encoding of a change payload.
func EncodeData(data domain.ChangeData) ([]byte, error) {
	b, err := encMode.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode change data: %w", err)
	}
	return b, nil
}

// DecodeData parses a change payload with the same strictness as Decode.
func DecodeData(b []byte) (domain.ChangeData, error) {
	var data domain.ChangeData
	if err := strictUnmarshal(b, &data); err != nil {
		return domain.ChangeData{}, err
	}
	if data.Version != DataVersion {
		return domain.ChangeData{}, fmt.Errorf(
			"%w: unsupported change data version %d", domain.ErrDecode, data.Version,
		)
	}
	return data, nil
}

// strictUnmarshal decodes b into v and rejects any input that would not be
// reproduced byte for byte by the canonical encoder.
func strictUnmarshal(b []byte, v any) error {
	if len(b) == 0 {
		return fmt.Errorf("%w: empty input", domain.ErrDecode)
	}
	if err := decMode.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	again, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if !bytes.Equal(again, b) {
		return fmt.Errorf("%w: non-canonical encoding", domain.ErrDecode)
	}
	return nil
}
