package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idchain/internal/domain/types"
)

func TestParseIdentifier_RoundTrip(t *testing.T) {
	const text = "Ie92f183eb4c324804ef4d62962dea94cf095a265"

	id, err := types.ParseIdentifier(text)
	require.NoError(t, err)
	assert.Equal(t, text, id.String())
	assert.Equal(t, byte(0xe9), id[0])
	assert.Equal(t, byte(0x65), id[types.IdentifierSize-1])
	assert.False(t, id.IsZero())

	upper, err := types.ParseIdentifier("I" + strings.ToUpper(text[1:]))
	require.NoError(t, err)
	assert.Equal(t, id, upper)
}

func TestParseIdentifier_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"no prefix":    "e92f183eb4c324804ef4d62962dea94cf095a265",
		"wrong prefix": "Xe92f183eb4c324804ef4d62962dea94cf095a265",
		"short":        "Ie92f183eb4c324804ef4d62962dea94cf095a2",
		"long":         "Ie92f183eb4c324804ef4d62962dea94cf095a26500",
		"not hex":      "Ie92f183eb4c324804ef4d62962dea94cf095a2zz",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := types.ParseIdentifier(in)
			require.ErrorIs(t, err, types.ErrParse)
		})
	}
}

func TestIdentifier_JSON(t *testing.T) {
	id, err := types.ParseIdentifier("Ie92f183eb4c324804ef4d62962dea94cf095a265")
	require.NoError(t, err)

	b, err := json.Marshal(map[string]types.Identifier{"id": id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"Ie92f183eb4c324804ef4d62962dea94cf095a265"}`, string(b))

	var got map[string]types.Identifier
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, id, got["id"])

	err = json.Unmarshal([]byte(`{"id":"nope"}`), &got)
	require.ErrorIs(t, err, types.ErrParse)
}

func TestChangeHistory_CloneIsDeep(t *testing.T) {
	h := types.ChangeHistory{{Data: []byte{1, 2}, Signature: []byte{3}}}
	c := h.Clone()
	require.True(t, h.Equal(c))

	c[0].Data[0] = 9
	assert.Equal(t, byte(1), h[0].Data[0])
	assert.False(t, h.Equal(c))
}

func TestParseKeyType(t *testing.T) {
	kt, err := types.ParseKeyType(" Ed25519 ")
	require.NoError(t, err)
	assert.Equal(t, types.KeyTypeEd25519, kt)

	kt, err = types.ParseKeyType("p256")
	require.NoError(t, err)
	assert.Equal(t, types.KeyTypeP256, kt)

	_, err = types.ParseKeyType("rsa")
	require.Error(t, err)
}
