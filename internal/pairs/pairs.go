// Package pairs builds the lists of emoji pairs a batch works on.
package pairs

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/handiism/emoji-kitchen-dl/internal/model"
	"github.com/samber/lo"
)

// Top100 is a fixed set of one hundred commonly used emoji.
var Top100 = []string{
	// Smileys & Emotion
	"😀", "😃", "😄", "😁", "😆", "😅", "🤣", "😂", "🙂", "🙃",
	"😉", "😊", "😇", "🥰", "😍", "🤩", "😘", "😗", "😚", "😙",
	"🥲", "😋", "😛", "😜", "🤪",

	// More smileys & negative emotions
	"😝", "🤑", "🤗", "🤭", "🤫", "🤔", "🤐", "🤨", "😐", "😑",
	"😶", "😏", "😒", "🙄", "😬",

	// Sad, worried, sick
	"😮", "🤯", "😳", "🥺", "😢", "😭", "😤", "😠", "😡", "🤬",
	"😈", "👿", "💀", "☠️", "💩",

	// Hearts
	"❤️", "🧡", "💛", "💚", "💙", "💜", "🖤", "🤍", "🤎", "💔",

	// Hands & gestures
	"👍", "👎", "👊", "✊", "🤛", "🤜", "👏", "🙌", "👐", "🤲",
	"🤝", "🙏", "✌️", "🤞", "🤟",

	// Animals
	"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼", "🐨", "🐯",

	// Food & drink
	"🍎", "🍕", "🍔", "🌮", "🍦",

	// Nature & weather
	"🌈", "⭐", "🌙", "☀️", "🔥",
}

// Product returns every ordered pair of emojis, including each emoji with
// itself, in row-major order.
//
// Example:
//
//	Product([]string{"😀", "😎"})
//	// 😀+😀, 😀+😎, 😎+😀, 😎+😎
func Product(emojis []string) []model.Pair {
	return lo.FlatMap(emojis, func(first string, _ int) []model.Pair {
		return lo.Map(emojis, func(second string, _ int) model.Pair {
			return model.NewPair(first, second)
		})
	})
}

// Unique drops repeated pairs, keeping the first occurrence.
func Unique(pairs []model.Pair) []model.Pair {
	return lo.Uniq(pairs)
}

// ParsePair parses "😀 😎", "😀+😎" or "😀,😎".
func ParsePair(s string) (model.Pair, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return model.Pair{}, fmt.Errorf("%w: pair %q: want two emoji", model.ErrInvalidInput, s)
	}
	pair := model.NewPair(fields[0], fields[1])
	if err := pair.Validate(); err != nil {
		return model.Pair{}, err
	}
	return pair, nil
}

// Parse reads a pair list: one pair per line, the first two whitespace
// separated fields of each line. Blank lines and lines starting with # are
// ignored, as are lines with fewer than two fields.
func Parse(r io.Reader) ([]model.Pair, error) {
	var out []model.Pair
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		out = append(out, model.NewPair(fields[0], fields[1]))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read pair list: %v", model.ErrIO, err)
	}
	return out, nil
}
