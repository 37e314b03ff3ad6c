package captcha

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/ds124wfegd/dynimage/internal/entity"
)

const (
	// DefaultAlphabet leaves out glyphs that are easy to confuse.
	DefaultAlphabet = "ABCDEFHKLMNPRTVXYZ234789"
	DefaultLength   = 5
	MinLength       = 3
	MaxLength       = 32
)

// GenerateAnswer draws length characters from alphabet.
func GenerateAnswer(rng *rand.Rand, alphabet string, length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("%w: answer length %d not in [%d, %d]", entity.ErrMalformedParameter, length, MinLength, MaxLength)
	}
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	chars := []rune(alphabet)

	var sb strings.Builder
	for range length {
		sb.WriteRune(chars[rng.IntN(len(chars))])
	}
	return sb.String(), nil
}

// Verify decrypts token and compares it with the user's answer.
func Verify(c *Cipher, token, answer string, caseSensitive bool) (bool, error) {
	expected, err := c.Decrypt(token)
	if err != nil {
		return false, err
	}
	if caseSensitive {
		return answer == expected, nil
	}
	return strings.EqualFold(answer, expected), nil
}
