package model

import (
	"fmt"
	"strings"
)

// Pair is an ordered combination of two emoji glyphs.
//
// Pair is a value type; two pairs are equal when both glyphs match in order.
type Pair struct {
	// First is the base emoji. It also names the directory the image is stored in.
	First string `json:"emoji1"`

	// Second is the emoji combined onto First.
	Second string `json:"emoji2"`
}

// NewPair creates a Pair from two glyphs. Surrounding whitespace is trimmed.
func NewPair(first, second string) Pair {
	return Pair{
		First:  strings.TrimSpace(first),
		Second: strings.TrimSpace(second),
	}
}

// Validate returns an error wrapping ErrInvalidInput when either glyph is empty.
func (p Pair) Validate() error {
	if strings.TrimSpace(p.First) == "" || strings.TrimSpace(p.Second) == "" {
		return fmt.Errorf("%w: empty emoji in pair %q + %q", ErrInvalidInput, p.First, p.Second)
	}
	return nil
}

// Key returns the codepoint representation of the pair.
func (p Pair) Key() CodepointKey {
	return CodepointKey{
		First:  Codepoint(p.First),
		Second: Codepoint(p.Second),
	}
}

// String renders the pair as "A + B".
func (p Pair) String() string {
	return p.First + " + " + p.Second
}

// CodepointKey holds the hex codepoint form of both emojis in a Pair.
type CodepointKey struct {
	First  string
	Second string
}

// Codepoint renders every rune of emoji as lowercase hex joined by hyphens.
//
// Example:
//
//	Codepoint("😀")  // "1f600"
//	Codepoint("❤️") // "2764-fe0f"
func Codepoint(emoji string) string {
	runes := []rune(strings.TrimSpace(emoji))
	parts := make([]string, 0, len(runes))
	for _, r := range runes {
		parts = append(parts, fmt.Sprintf("%x", r))
	}
	return strings.Join(parts, "-")
}
