// Package parser extracts structured sections from model output.
// Model responses are text with paired markers, not a wire protocol,
// so every function here degrades instead of failing: a malformed
// response must never block the conversation.
package parser

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ParseQuestion extracts the question and options sections from raw
// model output and returns question + "\n" + options with each option
// line trimmed and blank lines dropped.
//
// If either opening marker is missing the raw output is returned
// verbatim as a degraded result, with a structural-error diagnostic
// logged. The conversation continues either way.
func ParseQuestion(ctx context.Context, raw, questionTag, optionsTag string) string {
	question, qOK := extractTagged(raw, questionTag)
	options, oOK := extractTagged(raw, optionsTag)

	if !qOK || !oOK {
		missing := make([]string, 0, 2)
		if !qOK {
			missing = append(missing, questionTag)
		}
		if !oOK {
			missing = append(missing, optionsTag)
		}
		ctxzap.Error(ctx, "model response missing structural markers, passing raw output through",
			zap.Strings("missing_tags", missing),
			zap.String("raw_output", raw),
		)
		return raw
	}

	return strings.TrimSpace(question) + "\n" + cleanLines(options)
}

// extractTagged returns the text after the last opening marker, up to
// its closing marker. A missing closing marker yields the rest of the
// string; only the opening marker is required for a section to count
// as present.
func extractTagged(raw, tag string) (string, bool) {
	open := "<" + tag + ">"
	idx := strings.LastIndex(raw, open)
	if idx < 0 {
		return "", false
	}

	section := raw[idx+len(open):]
	if end := strings.Index(section, "</"+tag+">"); end >= 0 {
		section = section[:end]
	}

	return section, true
}

// cleanLines trims every line and drops blank ones.
func cleanLines(s string) string {
	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}

// Suggestion is one parsed block of synthesizer output.
type Suggestion struct {
	Text     string
	Keywords string
}

// SplitSuggestions splits synthesizer output on the suggestion glyph
// and extracts the optional keywords section of each block. Blocks
// that are pure whitespace are discarded, not counted.
func SplitSuggestions(raw, glyph, keywordsTag string) []Suggestion {
	blocks := strings.Split(raw, glyph)
	suggestions := make([]Suggestion, 0, len(blocks))

	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}

		if keywords, ok := extractClosedTag(block, keywordsTag); ok {
			text := block[:strings.Index(block, "<"+keywordsTag+">")]
			suggestions = append(suggestions, Suggestion{
				Text:     glyph + " " + strings.TrimSpace(text),
				Keywords: strings.TrimSpace(keywords),
			})
		} else {
			suggestions = append(suggestions, Suggestion{
				Text: glyph + " " + strings.TrimSpace(block),
			})
		}
	}

	return suggestions
}

// extractClosedTag requires both markers, unlike extractTagged: a
// suggestion block without a complete keywords pair keeps the tags as
// part of its text rather than guessing at a boundary.
func extractClosedTag(raw, tag string) (string, bool) {
	open := "<" + tag + ">"
	idx := strings.Index(raw, open)
	if idx < 0 {
		return "", false
	}

	section := raw[idx+len(open):]
	end := strings.Index(section, "</"+tag+">")
	if end < 0 {
		return "", false
	}

	return section[:end], true
}
