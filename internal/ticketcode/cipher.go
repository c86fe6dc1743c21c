package ticketcode

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// ErrCrypto marks unrecoverable cipher failures: malformed tokens,
// wrong keys, bad padding. Callers must treat it as fatal for the
// operation, never retry automatically.
var ErrCrypto = errors.New("ticketcode: crypto failure")

// Key derivation parameters. These are a wire-format compatibility
// constraint: offline bundles already in the field were produced with
// PBKDF2-HMAC-SHA1, 1000 iterations, 256-bit keys, and the secret
// doubling as its own salt. The secret is a high-entropy derived ticket
// code, not a user-chosen password, so the unusual salt choice does not
// weaken the construction in practice. Do not change any of these.
const (
	keyIterations = 1000
	keyLength     = 32
)

const tokenSeparator = "|"

func deriveKey(secret string) []byte {
	return pbkdf2.Key([]byte(secret), []byte(secret), keyIterations, keyLength, sha1.New)
}

// Encrypt seals payload under a key derived from secret. Each call
// draws a fresh random IV, so two encryptions of the same payload yield
// different tokens. Token format: urlsafeBase64(iv) "|" urlsafeBase64(ct).
func Encrypt(secret, payload string) (string, error) {
	block, err := aes.NewCipher(deriveKey(secret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	plaintext := pkcs7Pad([]byte(payload), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)

	return base64.RawURLEncoding.EncodeToString(iv) +
		tokenSeparator +
		base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It fails with ErrCrypto when the token is
// malformed or was not produced under the same secret.
func Decrypt(secret, token string) (string, error) {
	parts := strings.SplitN(token, tokenSeparator, 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: malformed token", ErrCrypto)
	}

	iv, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: bad iv length %d", ErrCrypto, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: bad ciphertext length %d", ErrCrypto, len(ciphertext))
	}

	block, err := aes.NewCipher(deriveKey(secret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, err := pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad padded length %d", ErrCrypto, len(data))
	}

	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrCrypto)
	}

	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("%w: bad padding", ErrCrypto)
		}
	}

	return data[:len(data)-padding], nil
}
