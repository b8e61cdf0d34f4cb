package ingest

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenCounter maps message text to a token count. The concrete tokenization
// model is injected at construction time so tests can substitute a
// deterministic fake. Implementations must return 0 for empty text.
type TokenCounter interface {
	CountTokens(text string) int
}

// WordCounter counts maximal runs of letters and digits. Contiguous CJK text
// collapses into a single run, so it suits mostly-Latin corpora.
type WordCounter struct{}

func (WordCounter) CountTokens(text string) int {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return len(fields)
}

// RuneCounter counts non-space runes. A closer proxy for subword tokenizers
// on CJK-heavy text, where most runes map to one token each.
type RuneCounter struct{}

func (RuneCounter) CountTokens(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// NewCounter builds the token counter named by the configuration.
// "none" returns nil: ingestion then fails fast on the first text message.
func NewCounter(kind string) (TokenCounter, error) {
	switch kind {
	case "words":
		return WordCounter{}, nil
	case "runes":
		return RuneCounter{}, nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer type %q", kind)
	}
}

// contentLength is the character (rune) count of content.
func contentLength(content string) int {
	return utf8.RuneCountInString(content)
}
