package pattern

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MaxLen caps patterns at 16 hex digits; a longer prefix is already a
// >10^19 candidate search and far beyond practical reach.
const MaxLen = 16

// Errors
var (
	ErrEmpty   = errors.New("pattern cannot be empty")
	ErrTooLong = fmt.Errorf("pattern cannot exceed %d hex digits", MaxLen)
)

// Pattern is a validated, immutable hex target matched against the
// start of a public key's hex encoding.
type Pattern struct {
	text string // uppercase hex, 1..MaxLen chars

	// Pre-decoded for byte-level matching in the hot path.
	full   []byte // whole bytes of the pattern
	oddNib byte   // value of a trailing odd digit
	hasNib bool   // pattern length is odd
}

// Compile validates raw and returns the pattern ready for matching.
// Matching is case-insensitive, so raw is normalized to uppercase.
func Compile(raw string) (Pattern, error) {
	text := strings.ToUpper(raw)
	if len(text) == 0 {
		return Pattern{}, ErrEmpty
	}
	if len(text) > MaxLen {
		return Pattern{}, ErrTooLong
	}
	for _, c := range text {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return Pattern{}, fmt.Errorf("invalid hex character %q (only 0-9 and A-F are allowed)", c)
		}
	}

	p := Pattern{text: text}
	even := text
	if len(text)%2 == 1 {
		p.hasNib = true
		p.oddNib = hexNibble(text[len(text)-1])
		even = text[:len(text)-1]
	}
	full, err := hex.DecodeString(even)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid pattern hex: %w", err)
	}
	p.full = full
	return p, nil
}

// String returns the normalized (uppercase) pattern text.
func (p Pattern) String() string { return p.text }

// Len returns the pattern length in hex digits.
func (p Pattern) Len() int { return len(p.text) }

// Matches reports whether the hex encoding of pub starts with the
// pattern. The comparison is anchored at position 0; an odd-length
// pattern checks the high nibble of the next byte rather than padding
// the pattern out to a full byte (which would change its meaning).
func (p Pattern) Matches(pub []byte) bool {
	need := len(p.full)
	if p.hasNib {
		need++
	}
	if len(pub) < need {
		return false
	}
	for i, b := range p.full {
		if pub[i] != b {
			return false
		}
	}
	if p.hasNib && pub[len(p.full)]>>4 != p.oddNib {
		return false
	}
	return true
}

func hexNibble(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	}
	return c - 'A' + 10
}
