package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

var (
	ErrEmptyKey         = errors.New("encryption key is empty")
	ErrInvalidKeyLength = fmt.Errorf("encryption key must be %d bytes", KeySize)
	ErrMalformedToken   = errors.New("sealed value is malformed")
)

// Sealer encrypts and authenticates opaque values such as bearer tokens.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// AESGCM seals with AES-256-GCM and prefixes a random nonce.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM builds a sealer from a raw 32-byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCM{aead: aead}, nil
}

// NewAESGCMFromBase64Key decodes a standard base64 key, as stored in
// STUDYLOAD_TOKEN_KEY.
func NewAESGCMFromBase64Key(encoded string) (*AESGCM, error) {
	if encoded == "" {
		return nil, ErrEmptyKey
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	return NewAESGCM(key)
}

// GenerateKey returns a fresh random key encoded for configuration.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (a *AESGCM) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return a.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (a *AESGCM) Open(sealed []byte) ([]byte, error) {
	size := a.aead.NonceSize()
	if len(sealed) < size+a.aead.Overhead() {
		return nil, ErrMalformedToken
	}
	plaintext, err := a.aead.Open(nil, sealed[:size], sealed[size:], nil)
	if err != nil {
		return nil, ErrMalformedToken
	}
	return plaintext, nil
}

// SealString seals plaintext into URL-safe text.
func SealString(s Sealer, plaintext []byte) (string, error) {
	sealed, err := s.Seal(plaintext)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// OpenString reverses SealString.
func OpenString(s Sealer, token string) ([]byte, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrMalformedToken
	}
	return s.Open(sealed)
}
