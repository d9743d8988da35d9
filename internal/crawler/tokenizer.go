package crawler

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest token, in letters, that Tokenize keeps.
const MinTokenLength = 3

// Tokenize splits text into runs of letters and drops runs shorter than
// MinTokenLength. Any rune that is not a letter separates tokens, so digits
// and punctuation never appear in the output. Tokens are returned in
// document order and are not deduplicated.
//
// Tokenize does not change case; callers lowercase the text first.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= MinTokenLength {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
