package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	c, err := New(key)
	require.NoError(t, err)

	sealed, err := c.Encrypt("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", sealed)

	opened, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", opened)
}

func TestEncryptIsRandomized(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := New(key)
	require.NoError(t, err)

	a, err := c.Encrypt("secret")
	require.NoError(t, err)
	b, err := c.Encrypt("secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "a fresh nonce must be used per encryption")
}

func TestPassphraseDerivedKeyIsStable(t *testing.T) {
	c1, err := NewFromPassphrase("correct horse")
	require.NoError(t, err)
	c2, err := NewFromPassphrase("correct horse")
	require.NoError(t, err)

	sealed, err := c1.Encrypt("password")
	require.NoError(t, err)
	opened, err := c2.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "password", opened)
}

func TestBadInput(t *testing.T) {
	_, err := New("not-base64!!")
	assert.Error(t, err)

	_, err = New("c2hvcnQ=") // "short"
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewFromPassphrase("")
	assert.Error(t, err)

	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := New(key)
	require.NoError(t, err)

	_, err = c.Decrypt("AAAA")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	other, err := NewFromPassphrase("different key entirely")
	require.NoError(t, err)
	sealed, err := other.Encrypt("x")
	require.NoError(t, err)
	_, err = c.Decrypt(sealed)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
