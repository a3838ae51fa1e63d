package util

import (
	"strings"
	"unicode"
)

// SnakeToTitle turns a snake_case variable name into a display name:
// "reaction_temperature" becomes "Reaction Temperature".
func SnakeToTitle(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// TitleToSnake is the inverse mapping for display names that follow the
// word-per-token convention. Arbitrary punctuation is not handled.
func TitleToSnake(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}
