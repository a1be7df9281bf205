package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// EncryptedKey is the at-rest form of a provider API key. Encrypted holds
// hex ciphertext and hex auth tag joined by a colon; IV is the hex nonce
// used for this encryption. Both are required to decrypt.
type EncryptedKey struct {
	Encrypted string `json:"encrypted"`
	IV        string `json:"iv"`
}

// Cipher encrypts user-supplied provider API keys with AES-256-GCM. It is
// constructed once at startup from the configured key material and shared
// by reference; the secret itself is never logged.
type Cipher struct {
	gcm cipher.AEAD
}

// NewCipher builds a Cipher from a base64-encoded 32-byte key.
func NewCipher(b64Key string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(b64Key)
	if err != nil {
		return nil, fmt.Errorf("decoding encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &Cipher{gcm: gcm}, nil
}

// Encrypt seals plaintext under a fresh random IV. Encrypting the same
// plaintext twice yields different outputs.
func (c *Cipher) Encrypt(plaintext string) (*EncryptedKey, error) {
	iv := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}

	sealed := c.gcm.Seal(nil, iv, []byte(plaintext), nil)
	tagStart := len(sealed) - c.gcm.Overhead()

	return &EncryptedKey{
		Encrypted: hex.EncodeToString(sealed[:tagStart]) + ":" + hex.EncodeToString(sealed[tagStart:]),
		IV:        hex.EncodeToString(iv),
	}, nil
}

// Decrypt opens an EncryptedKey. Any mismatch — wrong IV, altered
// ciphertext, altered or missing auth tag — fails; plaintext is never
// returned unauthenticated.
func (c *Cipher) Decrypt(encrypted, ivHex string) (string, error) {
	ctHex, tagHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", fmt.Errorf("malformed encrypted value: missing auth tag")
	}

	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}
	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return "", fmt.Errorf("decoding auth tag: %w", err)
	}
	if len(tag) != c.gcm.Overhead() {
		return "", fmt.Errorf("auth tag must be %d bytes, got %d", c.gcm.Overhead(), len(tag))
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("decoding iv: %w", err)
	}
	if len(iv) != c.gcm.NonceSize() {
		return "", fmt.Errorf("iv must be %d bytes, got %d", c.gcm.NonceSize(), len(iv))
	}

	plaintext, err := c.gcm.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}
	return string(plaintext), nil
}

// MaskKey returns a display-safe form of an API key. Keys of 8 characters
// or fewer are fully masked; longer keys keep the first and last 4
// characters. Output length always equals input length.
func MaskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("*", len(runes)-8) + string(runes[len(runes)-4:])
}
