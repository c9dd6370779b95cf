// Package textnorm cleans incident text before it is embedded.
//
// The same Normalize call is used when the knowledge base is vectorized and when a
// query is encoded. Changing it invalidates every persisted index.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize strips markdown emphasis, flattens newlines, drops numbered-list markers
// glued to the next word ("1.Install" -> "Install") and removes all punctuation.
// Letters, digits, underscores and whitespace survive. The result is stable under
// repeated application.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "\n", ", ")
	text = stripListMarkers(text)
	return stripPunctuation(text)
}

// stripListMarkers removes every "<digits>." that starts at a word boundary and is
// immediately followed by a word character.
func stripListMarkers(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(runes); {
		if unicode.IsDigit(runes[i]) && (i == 0 || !isWord(runes[i-1])) {
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			if j+1 < len(runes) && runes[j] == '.' && isWord(runes[j+1]) {
				i = j + 1
				continue
			}
			b.WriteString(string(runes[i:j]))
			i = j
			continue
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String()
}

func stripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if isWord(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
