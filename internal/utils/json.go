/*
Package utils holds small helpers shared across packages: tolerant JSON
extraction from generated text and string truncation.
*/
package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	// fencedBlockRegex matches fenced code blocks in order, capturing the
	// language tag and the body so fences pair up even for non-JSON blocks.
	fencedBlockRegex = regexp.MustCompile("(?s)```([a-zA-Z]*)[ \t]*\\r?\\n?(.*?)```")

	// Trailing commas before a closing brace/bracket: ,} -> }
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)

	// Missing comma between a value and the next key on a new line.
	missingCommaBeforeKeyRegex  = regexp.MustCompile(`(")\s*\n\s*("[\w][^"]*"\s*:)`)
	missingCommaAfterValueRegex = regexp.MustCompile(`(\d|true|false|null)\s*\n\s*("[\w][^"]*"\s*:)`)
	missingCommaAfterBraceRegex = regexp.MustCompile(`([}\]])\s*\n\s*([{"])`)

	// Single-quoted keys: {'key': -> {"key":
	singleQuoteKeyRegex = regexp.MustCompile(`([{,]\s*)'(\w+)'(\s*:)`)
)

// ExtractJSONBlock isolates the structured payload in generated text.
// Order: the first fenced block tagged json (or untagged), then the greedy span from
// the first '{' to the last '}', then the trimmed text itself.
func ExtractJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	for _, m := range fencedBlockRegex.FindAllStringSubmatch(text, -1) {
		if m[1] != "" && !strings.EqualFold(m[1], "json") {
			continue
		}
		if inner := strings.TrimSpace(m[2]); inner != "" {
			return inner
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return text
}

// DecodeJSON extracts and decodes a payload from generated text. When the
// block does not decode as-is, common syntax slips are repaired and decoding
// is retried once; the original decode error is returned if that fails too.
func DecodeJSON[T any](text string) (T, error) {
	var result T

	block := ExtractJSONBlock(text)
	if block == "" {
		return result, fmt.Errorf("no JSON found in response")
	}

	err := json.Unmarshal([]byte(block), &result)
	if err == nil {
		return result, nil
	}

	if repaired := repairJSON(block); repaired != block {
		var retry T
		if err2 := json.Unmarshal([]byte(repaired), &retry); err2 == nil {
			return retry, nil
		}
	}
	return result, fmt.Errorf("parse JSON: %w", err)
}

// repairJSON fixes syntax errors generators commonly make: raw control
// characters inside strings, missing or trailing commas, single-quoted keys.
func repairJSON(input string) string {
	result := sanitizeControlChars(input)
	result = missingCommaBeforeKeyRegex.ReplaceAllString(result, `$1, $2`)
	result = missingCommaAfterValueRegex.ReplaceAllString(result, `$1, $2`)
	result = missingCommaAfterBraceRegex.ReplaceAllString(result, `$1, $2`)
	result = trailingCommaRegex.ReplaceAllString(result, `$1`)
	result = singleQuoteKeyRegex.ReplaceAllString(result, `$1"$2"$3`)
	return result
}

// sanitizeControlChars escapes literal control characters inside JSON strings.
func sanitizeControlChars(input string) string {
	var result strings.Builder
	result.Grow(len(input))

	inString := false
	escaped := false

	for i := 0; i < len(input); i++ {
		c := input[i]

		if escaped {
			result.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && inString {
			result.WriteByte(c)
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			result.WriteByte(c)
			continue
		}

		if !inString {
			result.WriteByte(c)
			continue
		}

		switch c {
		case '\t':
			result.WriteString(`\t`)
		case '\n':
			result.WriteString(`\n`)
		case '\r':
			result.WriteString(`\r`)
		default:
			if c < 0x20 {
				result.WriteString(fmt.Sprintf(`\u%04x`, c))
			} else {
				result.WriteByte(c)
			}
		}
	}

	return result.String()
}
