package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

const maxVariants = 10

// Fold case-folds s. Casers are not safe for concurrent use.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// NormalizeQuery folds case, drops punctuation and collapses whitespace.
func NormalizeQuery(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	input = Fold(input)

	b := strings.Builder{}
	b.Grow(len(input))
	lastWasSpace := false
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if unicode.IsSpace(r) || r == '-' || r == '/' {
			if b.Len() == 0 || lastWasSpace {
				continue
			}
			b.WriteByte(' ')
			lastWasSpace = true
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ExpandQuery returns the normalized query followed by trade synonyms of the
// whole query or of its first word.
func ExpandQuery(normalized string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return []string{}
	}

	out := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(normalized)
	for _, syn := range GetSynonyms(normalized) {
		add(syn)
	}

	words := strings.Fields(normalized)
	if len(words) > 1 {
		rest := strings.Join(words[1:], " ")
		for _, syn := range GetSynonyms(words[0]) {
			add(syn + " " + rest)
		}
	}

	if len(out) > maxVariants {
		out = out[:maxVariants]
	}
	return out
}

// Synonyms maps what people type to the trade words used in listings.
var Synonyms = map[string][]string{
	"plumber":     {"plumbing", "pipe"},
	"electrician": {"electrical", "wiring"},
	"painter":     {"painting"},
	"carpenter":   {"carpentry", "furniture"},
	"maid":        {"cleaning", "house work"},
	"cleaner":     {"cleaning"},
	"driver":      {"delivery", "driving"},
	"labour":      {"construction", "labor"},
	"labor":       {"construction", "labour"},
	"helper":      {"delivery", "labor"},
	"cook":        {"cooking"},
}

func GetSynonyms(query string) []string {
	if v, ok := Synonyms[query]; ok {
		return append([]string(nil), v...)
	}
	return []string{}
}
