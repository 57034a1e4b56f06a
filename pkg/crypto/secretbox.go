package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// version tag for the v1 encoding: AES-256-GCM, random nonce, key derived
// from the server secret plus a fixed context string. New tags can be added
// later for re-keying without breaking stored values.
const versionV1 = "v1"

// ErrInvalidCiphertext is returned for any value that cannot be decrypted:
// wrong format, unknown version, truncated data, or authentication failure.
var ErrInvalidCiphertext = errors.New("invalid ciphertext")

// SecretBox encrypts and decrypts short credential strings at rest.
type SecretBox struct {
	key []byte
}

// NewSecretBox derives an encryption key from the server-wide secret and a
// fixed context string, so different credential kinds never share a key.
func NewSecretBox(serverSecret, context string) *SecretBox {
	sum := sha256.Sum256([]byte(serverSecret + "|" + context))
	return &SecretBox{key: sum[:]}
}

// Encrypt seals plaintext into a versioned delimited string:
// "v1:<base64 nonce>:<base64 ciphertext>".
func (b *SecretBox) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aesGCM.Seal(nil, nonce, []byte(plaintext), nil)

	return strings.Join([]string{
		versionV1,
		base64.StdEncoding.EncodeToString(nonce),
		base64.StdEncoding.EncodeToString(sealed),
	}, ":"), nil
}

// Decrypt opens a value produced by Encrypt. All failures collapse into
// ErrInvalidCiphertext so callers can treat them uniformly as "no credential".
func (b *SecretBox) Decrypt(encoded string) (string, error) {
	parts := strings.Split(encoded, ":")
	if len(parts) != 3 {
		return "", ErrInvalidCiphertext
	}
	if parts[0] != versionV1 {
		return "", ErrInvalidCiphertext
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	sealed, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(b.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(nonce) != aesGCM.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}
