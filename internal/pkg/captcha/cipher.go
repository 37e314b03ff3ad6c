// Package captcha implements stateless captchas: the expected answer travels
// encrypted inside the image query string, and the distortion stage draws it
// back as an OCR-resistant raster.
package captcha

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ds124wfegd/dynimage/internal/entity"
	"golang.org/x/crypto/hkdf"
)

// KeyProvider supplies the deployment-wide AES key and IV.
type KeyProvider interface {
	Keys() (key, iv []byte, err error)
}

type staticKeys struct {
	key, iv []byte
}

func (k staticKeys) Keys() ([]byte, []byte, error) { return k.key, k.iv, nil }

// StaticKeys wraps an explicit key and IV.
func StaticKeys(key, iv []byte) KeyProvider {
	return staticKeys{key: bytes.Clone(key), iv: bytes.Clone(iv)}
}

const keyInfo = "dynimage captcha v1"

// DeriveKeys expands a shared secret into an AES-256 key and IV with HKDF-SHA256.
func DeriveKeys(secret string) (KeyProvider, error) {
	if secret == "" {
		return nil, errors.New("captcha secret is empty")
	}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	buf := make([]byte, 32+aes.BlockSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to derive captcha keys: %w", err)
	}
	return staticKeys{key: buf[:32], iv: buf[32:]}, nil
}

// Cipher encrypts captcha answers into URL-safe tokens. The IV is fixed, so
// equal answers produce equal tokens. Safe for concurrent use.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

func NewCipher(kp KeyProvider) (*Cipher, error) {
	key, iv, err := kp.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to load captcha keys: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("invalid captcha key: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("invalid captcha iv: want %d bytes, got %d", aes.BlockSize, len(iv))
	}
	return &Cipher{block: block, iv: bytes.Clone(iv)}, nil
}

func (c *Cipher) Encrypt(plaintext string) string {
	data := pad([]byte(plaintext), aes.BlockSize)
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(data, data)
	return base64.RawURLEncoding.EncodeToString(data)
}

func (c *Cipher) Decrypt(token string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: not base64url", entity.ErrInvalidCaptchaToken)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: bad length %d", entity.ErrInvalidCaptchaToken, len(data))
	}
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(data, data)

	plain, ok := unpad(data, aes.BlockSize)
	if !ok {
		return "", fmt.Errorf("%w: bad padding", entity.ErrInvalidCaptchaToken)
	}
	return string(plain), nil
}

// PKCS#7
func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, false
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
