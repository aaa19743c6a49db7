package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedKey() string {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestNewAESGCMFromBase64Key(t *testing.T) {
	t.Run("accepts a 32-byte key", func(t *testing.T) {
		sealer, err := NewAESGCMFromBase64Key(fixedKey())
		require.NoError(t, err)
		assert.NotNil(t, sealer)
	})

	t.Run("rejects an empty key", func(t *testing.T) {
		_, err := NewAESGCMFromBase64Key("")
		assert.ErrorIs(t, err, ErrEmptyKey)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		_, err := NewAESGCMFromBase64Key("not-valid-base64!!!")
		assert.Error(t, err)
	})

	t.Run("rejects the wrong length", func(t *testing.T) {
		_, err := NewAESGCMFromBase64Key(base64.StdEncoding.EncodeToString([]byte("short")))
		assert.ErrorIs(t, err, ErrInvalidKeyLength)

		_, err = NewAESGCM(make([]byte, 64))
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})
}

func TestGenerateKey(t *testing.T) {
	first, err := GenerateKey()
	require.NoError(t, err)
	second, err := GenerateKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	_, err = NewAESGCMFromBase64Key(first)
	assert.NoError(t, err)
}

func TestAESGCM_SealOpen(t *testing.T) {
	sealer, err := NewAESGCMFromBase64Key(fixedKey())
	require.NoError(t, err)

	t.Run("round trips", func(t *testing.T) {
		sealed, err := sealer.Seal([]byte(`{"sub":"42"}`))
		require.NoError(t, err)

		opened, err := sealer.Open(sealed)
		require.NoError(t, err)
		assert.Equal(t, `{"sub":"42"}`, string(opened))
	})

	t.Run("uses a fresh nonce every time", func(t *testing.T) {
		a, err := sealer.Seal([]byte("same"))
		require.NoError(t, err)
		b, err := sealer.Seal([]byte("same"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects tampered input", func(t *testing.T) {
		sealed, err := sealer.Seal([]byte("payload"))
		require.NoError(t, err)
		sealed[len(sealed)-1] ^= 0xff

		_, err = sealer.Open(sealed)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("rejects short input", func(t *testing.T) {
		_, err := sealer.Open([]byte("tiny"))
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("rejects a different key", func(t *testing.T) {
		sealed, err := sealer.Seal([]byte("payload"))
		require.NoError(t, err)

		otherKey, err := GenerateKey()
		require.NoError(t, err)
		other, err := NewAESGCMFromBase64Key(otherKey)
		require.NoError(t, err)

		_, err = other.Open(sealed)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})
}

func TestSealString(t *testing.T) {
	sealer, err := NewAESGCMFromBase64Key(fixedKey())
	require.NoError(t, err)

	token, err := SealString(sealer, []byte("hello"))
	require.NoError(t, err)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")

	opened, err := OpenString(sealer, token)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(opened))

	_, err = OpenString(sealer, "%%%")
	assert.ErrorIs(t, err, ErrMalformedToken)
}
