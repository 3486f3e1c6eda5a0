// Package codec converts the JSON-array text columns of the events table
// (link, category_optional, theme_optional) to and from string slices.
package codec

import (
	"encoding/json"
	"strings"
)

// emptyArray is the persisted form of a list with no items
const emptyArray = "[]"

// Decode parses a nullable JSON array-of-strings column.
// Null, empty, malformed or non-array input yields an empty slice.
func Decode(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	return DecodeString(*raw)
}

// DecodeString parses JSON array-of-strings text, or returns an empty slice
func DecodeString(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []string{}
	}
	return items
}

// Encode renders items as JSON array text. A nil or empty slice encodes as "[]".
func Encode(items []string) string {
	if len(items) == 0 {
		return emptyArray
	}
	b, err := json.Marshal(items)
	if err != nil {
		return emptyArray
	}
	return string(b)
}

// SplitList turns the comma-separated editing form into list items.
// Segments are trimmed and blank segments dropped, so "a, ,b," yields [a b].
func SplitList(input string) []string {
	parts := strings.Split(input, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// JoinList renders items in the comma-separated editing form
func JoinList(items []string) string {
	return strings.Join(items, ", ")
}

// EncodeInput applies the editing convention and returns the persisted form
func EncodeInput(input string) string {
	return Encode(SplitList(input))
}

// First returns the first decoded item of raw, or "" when there is none
func First(raw *string) string {
	items := Decode(raw)
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

// WellFormed reports whether raw is null-equivalent or a JSON array of
// strings. Anything else silently decodes to an empty list.
func WellFormed(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	var items []string
	return json.Unmarshal([]byte(raw), &items) == nil
}
