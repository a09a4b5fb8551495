package results

import (
	"encoding/json"
	"fmt"
)

// listFields are probed in priority order when a result payload is an object
// rather than a bare list.
var listFields = []string{"resultObject", "data", "results", "profiles", "items"}

// keyFields are the URL-like identity keys for dedupe, in priority order.
var keyFields = []string{"profileUrl", "linkedinProfileUrl", "profileLink", "url", "link"}

// Normalize coerces a raw result payload into a flat item list. A list comes
// back as itself; an object yields the first present list-bearing field; a
// string-encoded payload is decoded one level and retried. Anything else is
// an empty list — entries are never fabricated.
func Normalize(raw json.RawMessage) []any {
	out, _ := normalize(raw, 0)
	return out
}

func normalize(raw json.RawMessage, depth int) ([]any, bool) {
	if len(raw) == 0 || depth > 3 {
		return nil, false
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}

	// Some agent variants return the payload as a JSON string wrapping the
	// real document.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return normalize(json.RawMessage(s), depth+1)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	for _, f := range listFields {
		nested, present := obj[f]
		if !present {
			continue
		}
		if out, ok := normalize(nested, depth+1); ok {
			return out, true
		}
	}
	return nil, false
}

// Dedupe keeps the first occurrence per identity key, preserving order.
func Dedupe(items []any) []any {
	seen := make(map[string]bool, len(items))
	out := make([]any, 0, len(items))
	for _, it := range items {
		k := identityKey(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// identityKey is the first present URL-like field of an item. Items with no
// such field fall back to their full serialization, which only collapses
// byte-identical entries.
func identityKey(item any) string {
	if m, ok := item.(map[string]any); ok {
		for _, f := range keyFields {
			if v, ok := m[f].(string); ok && v != "" {
				return v
			}
		}
	}
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprintf("%v", item)
	}
	return string(b)
}

// Truncate keeps at most max items, prefix order preserved. max <= 0 means
// no cap.
func Truncate(items []any, max int) []any {
	if max <= 0 || len(items) <= max {
		return items
	}
	return items[:max]
}
