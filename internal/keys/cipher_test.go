package keys

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCipher(t *testing.T) *Cipher {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("a", 32)))
	c, err := NewCipher(key)
	require.NoError(t, err)
	return c
}

func TestNewCipher(t *testing.T) {
	t.Run("rejects invalid base64", func(t *testing.T) {
		_, err := NewCipher("not-base64!!!")
		assert.Error(t, err)
	})

	t.Run("rejects wrong key length", func(t *testing.T) {
		_, err := NewCipher(base64.StdEncoding.EncodeToString([]byte("short")))
		assert.Error(t, err)
	})
}

func TestCipher_Roundtrip(t *testing.T) {
	c := testCipher(t)

	cases := []string{
		"simple-key",
		"sk-proj-1234567890abcdefghijklmnopqrstuvwxyz",
		"!@#$%^&*()_+-=[]{}|;:,.<>?",
		"unicode-测试-🔐",
		"",
		strings.Repeat("a", 1000),
	}

	for _, plaintext := range cases {
		enc, err := c.Encrypt(plaintext)
		require.NoError(t, err)

		decrypted, err := c.Decrypt(enc.Encrypted, enc.IV)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestCipher_FreshIVPerCall(t *testing.T) {
	c := testCipher(t)

	r1, err := c.Encrypt("my-secret-key")
	require.NoError(t, err)
	r2, err := c.Encrypt("my-secret-key")
	require.NoError(t, err)

	assert.NotEqual(t, r1.IV, r2.IV)
	assert.NotEqual(t, r1.Encrypted, r2.Encrypted)
}

func TestCipher_EncryptedFormat(t *testing.T) {
	c := testCipher(t)

	enc, err := c.Encrypt("test-key")
	require.NoError(t, err)

	parts := strings.Split(enc.Encrypted, ":")
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0], "ciphertext portion")
	assert.NotEmpty(t, parts[1], "auth tag portion")
}

func TestCipher_Tampering(t *testing.T) {
	c := testCipher(t)

	enc, err := c.Encrypt("test-key")
	require.NoError(t, err)
	data, tag, _ := strings.Cut(enc.Encrypted, ":")

	t.Run("wrong iv", func(t *testing.T) {
		wrongIV := strings.Repeat("a", len(enc.IV))
		if wrongIV == enc.IV {
			wrongIV = strings.Repeat("b", len(enc.IV))
		}
		_, err := c.Decrypt(enc.Encrypted, wrongIV)
		assert.Error(t, err)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		tampered := flipHex(data) + ":" + tag
		_, err := c.Decrypt(tampered, enc.IV)
		assert.Error(t, err)
	})

	t.Run("tampered auth tag", func(t *testing.T) {
		tampered := data + ":" + flipHex(tag)
		_, err := c.Decrypt(tampered, enc.IV)
		assert.Error(t, err)
	})

	t.Run("missing auth tag", func(t *testing.T) {
		_, err := c.Decrypt(data, enc.IV)
		assert.Error(t, err)
	})

	t.Run("truncated auth tag", func(t *testing.T) {
		_, err := c.Decrypt(data+":"+tag[:8], enc.IV)
		assert.Error(t, err)
	})

	t.Run("non-hex input", func(t *testing.T) {
		_, err := c.Decrypt("zz:zz", enc.IV)
		assert.Error(t, err)
	})
}

func TestCipher_DifferentKeysCannotDecrypt(t *testing.T) {
	c1 := testCipher(t)
	c2, err := NewCipher(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("b", 32))))
	require.NoError(t, err)

	enc, err := c1.Encrypt("secret")
	require.NoError(t, err)

	_, err = c2.Decrypt(enc.Encrypted, enc.IV)
	assert.Error(t, err)
}

// flipHex changes the first hex digit so the decoded bytes differ.
func flipHex(s string) string {
	if s == "" {
		return s
	}
	replacement := "0"
	if s[0] == '0' {
		replacement = "1"
	}
	return replacement + s[1:]
}

func TestMaskKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"sk-proj-1234567890abcdefghij", "sk-p********************ghij"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"abc", "***"},
		{"x", "*"},
		{"", ""},
	}
	for _, tc := range cases {
		got := MaskKey(tc.in)
		assert.Equal(t, tc.want, got)
		assert.Len(t, got, len(tc.in))
	}
}

func TestMaskKey_LongKey(t *testing.T) {
	key := strings.Repeat("a", 100)
	masked := MaskKey(key)

	assert.Len(t, masked, 100)
	assert.True(t, strings.HasPrefix(masked, "aaaa"))
	assert.True(t, strings.HasSuffix(masked, "aaaa"))
	assert.Equal(t, strings.Repeat("*", 92), masked[4:96])
}
