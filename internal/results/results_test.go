package results

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalize_ListIsReturnedAsIs(t *testing.T) {
	raw := json.RawMessage(`[{"url":"a"},{"url":"b"}]`)
	got := Normalize(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}

	// Idempotence: normalizing the re-serialized output changes nothing.
	again, _ := json.Marshal(got)
	if !reflect.DeepEqual(Normalize(again), got) {
		t.Fatal("normalize is not idempotent on lists")
	}
}

func TestNormalize_ProbesNestedFieldsInOrder(t *testing.T) {
	raw := json.RawMessage(`{"data":[{"url":"d"}],"results":[{"url":"r"}]}`)
	got := Normalize(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	m := got[0].(map[string]any)
	if m["url"] != "d" {
		t.Fatalf("expected data to win over results, got %v", m)
	}
}

func TestNormalize_StringEncodedPayload(t *testing.T) {
	raw := json.RawMessage(`{"resultObject":"[{\"url\":\"a\"}]"}`)
	got := Normalize(raw)
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
}

func TestNormalize_UnknownShapeIsEmpty(t *testing.T) {
	for _, raw := range []string{`{"foo":"bar"}`, `42`, `"plain text"`, ``} {
		if got := Normalize(json.RawMessage(raw)); len(got) != 0 {
			t.Fatalf("Normalize(%s) fabricated entries: %v", raw, got)
		}
	}
}

func TestDedupe_FirstSeenWinsOrderPreserved(t *testing.T) {
	items := []any{
		map[string]any{"url": "a", "n": 1.0},
		map[string]any{"url": "b"},
		map[string]any{"url": "a", "n": 2.0},
	}
	got := Dedupe(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	first := got[0].(map[string]any)
	if first["url"] != "a" || first["n"] != 1.0 {
		t.Fatalf("first occurrence lost: %v", first)
	}
	if got[1].(map[string]any)["url"] != "b" {
		t.Fatalf("order not preserved: %v", got)
	}
}

func TestDedupe_KeyPriority(t *testing.T) {
	// profileUrl outranks url: the two items share a url but differ on
	// profileUrl, so both survive.
	items := []any{
		map[string]any{"profileUrl": "p1", "url": "same"},
		map[string]any{"profileUrl": "p2", "url": "same"},
	}
	if got := Dedupe(items); len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
}

func TestDedupe_SerializationFallback(t *testing.T) {
	items := []any{
		map[string]any{"name": "x"},
		map[string]any{"name": "x"},
		map[string]any{"name": "y"},
	}
	got := Dedupe(items)
	if len(got) != 2 {
		t.Fatalf("expected byte-identical items to collapse, got %d", len(got))
	}
}

func TestTruncate(t *testing.T) {
	items := []any{1, 2, 3, 4, 5}
	got := Truncate(items, 3)
	if !reflect.DeepEqual(got, []any{1, 2, 3}) {
		t.Fatalf("got %v", got)
	}
	if got := Truncate(items, 10); len(got) != 5 {
		t.Fatalf("short list must pass through, got %d", len(got))
	}
	if got := Truncate(items, 0); len(got) != 5 {
		t.Fatalf("max<=0 means no cap, got %d", len(got))
	}
}
