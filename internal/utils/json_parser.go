// Package utils holds helpers for handling assistant output.
package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSONBlock   = regexp.MustCompile("(?s)```json\\s*(.+?)\\s*```")
	fencedBlock       = regexp.MustCompile("(?s)```\\s*(.+?)\\s*```")
	trailingComma     = regexp.MustCompile(`,\s*([}\]])`)
	unquotedKey       = regexp.MustCompile(`([{,]\s*)(\w+)(\s*:)`)
	controlCharacters = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON decodes JSON produced by a language model into target. It
// accepts plain JSON, JSON inside a markdown fence, JSON surrounded by prose,
// and JSON with the usual model mistakes (trailing commas, unquoted keys,
// single quotes).
func ParseAIJSON(input string, target any) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []func(string) string{
		func(s string) string { return s },
		extractFromMarkdown,
		extractJSONFromText,
		cleanAndFixJSON,
	}

	for _, candidate := range candidates {
		text := candidate(input)
		if text == "" {
			continue
		}
		if err := json.Unmarshal([]byte(text), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// extractFromMarkdown returns the body of a ```json fence, or of a bare fence
// when it looks like JSON
func extractFromMarkdown(input string) string {
	if m := fencedJSONBlock.FindStringSubmatch(input); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	if m := fencedBlock.FindStringSubmatch(input); len(m) > 1 {
		content := strings.TrimSpace(m[1])
		if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
			return content
		}
	}

	return ""
}

// extractJSONFromText finds the first balanced object, then array, in text
func extractJSONFromText(input string) string {
	if start := strings.Index(input, "{"); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '{', '}'); extracted != "" {
			return extracted
		}
	}

	if start := strings.Index(input, "["); start >= 0 {
		if extracted := extractBalancedBraces(input[start:], '[', ']'); extracted != "" {
			return extracted
		}
	}

	return ""
}

// extractBalancedBraces returns the first open...close span, ignoring
// delimiters inside string literals
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := 0

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

// cleanAndFixJSON repairs the most common model formatting mistakes
func cleanAndFixJSON(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "\ufeff")
	if extracted := extractJSONFromText(s); extracted != "" {
		s = extracted
	}

	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	s = controlCharacters.ReplaceAllString(s, "")

	return s
}

// fixSingleQuotes turns single-quoted tokens into double-quoted ones when the
// quote opens or closes a value, leaving apostrophes inside words alone
func fixSingleQuotes(input string) string {
	var result strings.Builder
	inDoubleQuote := false
	escape := false
	var prev rune

	for i, ch := range input {
		out := ch
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inDoubleQuote = !inDoubleQuote
		case ch == '\'' && !inDoubleQuote:
			next := nextRune(input, i)
			if i == 0 || strings.ContainsRune(":,[{ ", prev) || strings.ContainsRune(",]}:", next) {
				out = '"'
			}
		}
		result.WriteRune(out)
		prev = ch
	}

	return result.String()
}

func nextRune(s string, i int) rune {
	for _, r := range s[i+1:] {
		return r
	}
	return 0
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
