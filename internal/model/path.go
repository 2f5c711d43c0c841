package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// FilenameFormat selects how emojis are rendered into directory and file names.
type FilenameFormat string

const (
	// FormatEmoji uses the literal glyphs, e.g. "😀_😎_512.png".
	FormatEmoji FilenameFormat = "emoji"

	// FormatCodepoint uses hex codepoints, e.g. "1f600_1f60e_512.png".
	FormatCodepoint FilenameFormat = "codepoint"

	// FormatAuto picks FormatEmoji when the filesystem can round-trip glyphs
	// and FormatCodepoint otherwise. The storage layer decides once, at construction.
	FormatAuto FilenameFormat = "auto"
)

// ParseFilenameFormat converts a string to a FilenameFormat, defaulting to FormatAuto.
func ParseFilenameFormat(s string) FilenameFormat {
	switch FilenameFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatEmoji:
		return FormatEmoji
	case FormatCodepoint:
		return FormatCodepoint
	case FormatAuto:
		fallthrough
	default:
		return FormatAuto
	}
}

// Path is a resolved location for one pair image.
type Path struct {
	// Dir is the directory named after the pair's first emoji.
	Dir string

	// File is the base filename, "<e1>_<e2>_<size>.png".
	File string
}

// Full returns the joined directory and filename.
func (p Path) Full() string {
	return filepath.Join(p.Dir, p.File)
}

// Resolve computes where the image for pair at the given size is stored under root.
//
// Resolve is pure: it performs no I/O and always yields the same path for the
// same inputs. FormatAuto resolves to FormatCodepoint here because the safe
// form is the only one that can be chosen without touching the filesystem.
//
// Returns an error wrapping ErrInvalidInput if either emoji is empty or size
// is not positive.
//
// Example:
//
//	p, _ := Resolve("/out", NewPair("😀", "😎"), 128, FormatEmoji)
//	// p.Dir  = "/out/😀"
//	// p.File = "😀_😎_128.png"
func Resolve(root string, pair Pair, size int, format FilenameFormat) (Path, error) {
	if err := pair.Validate(); err != nil {
		return Path{}, err
	}
	if size <= 0 {
		return Path{}, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidInput, size)
	}

	first := DirectoryName(pair.First, format)
	second := DirectoryName(pair.Second, format)
	fileName := fmt.Sprintf("%s_%s_%d.png", first, second, size)

	return Path{
		Dir:  filepath.Join(root, first),
		File: fileName,
	}, nil
}

// DirectoryName renders a single emoji as a path component for the given format.
func DirectoryName(emoji string, format FilenameFormat) string {
	if format == FormatEmoji {
		if name := sanitizeFileName(strings.TrimSpace(emoji)); name != "" {
			return name
		}
	}
	return Codepoint(emoji)
}

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
func sanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
