package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalize applies BertNormalizer semantics: control-character cleanup,
// CJK spacing, lowercasing, and accent stripping, as enabled by the
// descriptor flags.
func (t *Tokenizer) normalize(text string) string {
	if t.cleanText {
		text = cleanText(text)
	}
	if t.handleChinese {
		text = spaceOutCJK(text)
	}
	if t.lowercase {
		text = strings.ToLower(text)
	}
	if t.stripAccents {
		text = stripAccents(text)
	}
	return text
}

// cleanText replaces tab, newline, and carriage return with spaces, and
// drops other control characters and the replacement character.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r == 0 || r == 0xFFFD || unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// spaceOutCJK surrounds each CJK ideograph with spaces so that WordPiece
// treats it as its own word.
func spaceOutCJK(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isCJK(r) {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}

// stripAccents removes combining marks after canonical decomposition.
func stripAccents(text string) string {
	decomposed := norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// preTokenize splits normalized text into words: whitespace separates
// words, and each punctuation character is a word of its own.
func (t *Tokenizer) preTokenize(text string) []string {
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush()
		case isPunctuation(r):
			flush()
			words = append(words, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return words
}

// isPunctuation matches the BERT notion of punctuation: the ASCII symbol
// ranges plus anything Unicode classifies as punctuation.
func isPunctuation(r rune) bool {
	if (r >= '!' && r <= '/') || (r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') || (r >= '{' && r <= '~') {
		return true
	}
	return unicode.IsPunct(r)
}
