package scorer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Suggest returns the full target word for the word being typed in input.
// Empty input suggests the first word; input ending in whitespace suggests
// the next word. A partial word that is not a prefix of the expected target
// word yields no suggestion.
func Suggest(input, target string) string {
	words := strings.Fields(target)
	if len(words) == 0 {
		return ""
	}
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return words[0]
	}
	typed := strings.Fields(trimmed)
	if endsWithSpace(input) {
		if len(typed) < len(words) {
			return words[len(typed)]
		}
		return ""
	}
	k := len(typed) - 1
	if k >= len(words) {
		return ""
	}
	partial := Normalize(typed[k])
	if partial == "" {
		return ""
	}
	if strings.HasPrefix(Normalize(words[k]), partial) {
		return words[k]
	}
	return ""
}

// Accept replaces the last whitespace-delimited token of input with
// suggestion and appends a space, ready for the next word.
func Accept(input, suggestion string) string {
	if suggestion == "" {
		return input
	}
	if input == "" || endsWithSpace(input) {
		return input + suggestion + " "
	}
	idx := strings.LastIndexFunc(input, unicode.IsSpace)
	if idx < 0 {
		return suggestion + " "
	}
	_, size := utf8.DecodeRuneInString(input[idx:])
	return input[:idx+size] + suggestion + " "
}

func endsWithSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}
