package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	box := NewSecretBox("server-secret", "telegram-token")

	encrypted, err := box.Encrypt("123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encrypted, "v1:"))
	assert.Len(t, strings.Split(encrypted, ":"), 3)

	plaintext, err := box.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11", plaintext)
}

func TestEncryptProducesFreshNonces(t *testing.T) {
	box := NewSecretBox("server-secret", "telegram-token")

	first, err := box.Encrypt("token")
	require.NoError(t, err)
	second, err := box.Encrypt("token")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecryptRejectsWrongSecret(t *testing.T) {
	box := NewSecretBox("server-secret", "telegram-token")
	other := NewSecretBox("different-secret", "telegram-token")

	encrypted, err := box.Encrypt("token")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecryptRejectsWrongContext(t *testing.T) {
	box := NewSecretBox("server-secret", "telegram-token")
	other := NewSecretBox("server-secret", "another-context")

	encrypted, err := box.Encrypt("token")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	box := NewSecretBox("server-secret", "telegram-token")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no delimiters", "plaintext"},
		{"unknown version", "v9:YWJj:YWJj"},
		{"bad nonce encoding", "v1:!!!:YWJj"},
		{"bad ciphertext encoding", "v1:YWJj:!!!"},
		{"short nonce", "v1:YWJj:YWJjZGVmZ2hpamtsbW5vcA=="},
		{"too many parts", "v1:YWJj:YWJj:YWJj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := box.Decrypt(tt.input)
			assert.ErrorIs(t, err, ErrInvalidCiphertext)
		})
	}
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	box := NewSecretBox("server-secret", "telegram-token")

	encrypted, err := box.Encrypt("token")
	require.NoError(t, err)

	parts := strings.Split(encrypted, ":")
	require.Len(t, parts, 3)

	// Flip the ciphertext part for another valid base64 payload
	tampered := parts[0] + ":" + parts[1] + ":" + "QUFBQUFBQUFBQUFBQUFBQUFBQUFBQQ=="
	_, err = box.Decrypt(tampered)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
