package filter

import "testing"

func mustParse(t *testing.T, spec map[string]interface{}) *Filter {
	t.Helper()
	f, err := ParseSpec(spec)
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}
	return f
}

func TestEquality(t *testing.T) {
	f := mustParse(t, map[string]interface{}{"tag": "a"})
	if !f.Matches(map[string]interface{}{"tag": "a"}) {
		t.Error("equal string should match")
	}
	if f.Matches(map[string]interface{}{"tag": "b"}) {
		t.Error("different string should not match")
	}
	if f.Matches(map[string]interface{}{}) {
		t.Error("missing field should not match")
	}
}

func TestEqualityNumericCoercion(t *testing.T) {
	// JSON decoding yields float64; stored metadata may hold int.
	f := mustParse(t, map[string]interface{}{"count": float64(5)})
	if !f.Matches(map[string]interface{}{"count": 5}) {
		t.Error("int 5 should equal float64 5")
	}
}

func TestRange(t *testing.T) {
	f := mustParse(t, map[string]interface{}{"score": map[string]interface{}{"min": 1, "max": 10}})
	if !f.Matches(map[string]interface{}{"score": 5}) {
		t.Error("5 should be in [1,10]")
	}
	if !f.Matches(map[string]interface{}{"score": 1}) || !f.Matches(map[string]interface{}{"score": 10}) {
		t.Error("range bounds are inclusive")
	}
	if f.Matches(map[string]interface{}{"score": 15}) {
		t.Error("15 should be out of range")
	}
	if f.Matches(map[string]interface{}{"score": "high"}) {
		t.Error("non-numeric field should not match a range")
	}

	maxOnly := mustParse(t, map[string]interface{}{"score": map[string]interface{}{"max": 10}})
	if maxOnly.Matches(map[string]interface{}{"score": 15}) {
		t.Error("15 should fail max-only bound of 10")
	}
	if !maxOnly.Matches(map[string]interface{}{"score": -100}) {
		t.Error("open min bound should accept any low value")
	}
}

func TestContains(t *testing.T) {
	f := mustParse(t, map[string]interface{}{"tags": map[string]interface{}{"contains": "go"}})
	if !f.Matches(map[string]interface{}{"tags": []interface{}{"rust", "go"}}) {
		t.Error("array containing value should match")
	}
	if f.Matches(map[string]interface{}{"tags": []interface{}{"rust"}}) {
		t.Error("array without value should not match")
	}
	if f.Matches(map[string]interface{}{"tags": "go"}) {
		t.Error("non-array field should not match contains")
	}
	typed := mustParse(t, map[string]interface{}{"tags": map[string]interface{}{"contains": "go"}})
	if !typed.Matches(map[string]interface{}{"tags": []string{"go"}}) {
		t.Error("typed string slice should match contains")
	}
}

func TestRegex(t *testing.T) {
	f := mustParse(t, map[string]interface{}{"author": map[string]interface{}{"regex": "^Ali"}})
	if !f.Matches(map[string]interface{}{"author": "Alice"}) {
		t.Error("matching string should pass regex")
	}
	if f.Matches(map[string]interface{}{"author": "Bob"}) {
		t.Error("non-matching string should fail regex")
	}
	if f.Matches(map[string]interface{}{"author": 42}) {
		t.Error("non-string field should not match regex")
	}
}

func TestRegexParseError(t *testing.T) {
	_, err := ParseSpec(map[string]interface{}{"author": map[string]interface{}{"regex": "["}})
	if err == nil {
		t.Error("invalid regex should be a parse error")
	}
}

func TestRangeParseError(t *testing.T) {
	_, err := ParseSpec(map[string]interface{}{"score": map[string]interface{}{"min": "low"}})
	if err == nil {
		t.Error("non-numeric bound should be a parse error")
	}
}

func TestDotPath(t *testing.T) {
	f := mustParse(t, map[string]interface{}{"source.author": "Alice"})
	if !f.Matches(map[string]interface{}{"source": map[string]interface{}{"author": "Alice"}}) {
		t.Error("nested path should resolve")
	}
	if f.Matches(map[string]interface{}{"source": "flat"}) {
		t.Error("non-map intermediate segment should reject")
	}
	if f.Matches(map[string]interface{}{"other": map[string]interface{}{"author": "Alice"}}) {
		t.Error("missing intermediate segment should reject")
	}
}

func TestUnknownShapeFallsBackToEquality(t *testing.T) {
	spec := map[string]interface{}{"nested": map[string]interface{}{"custom": 1}}
	f := mustParse(t, spec)
	if !f.Matches(map[string]interface{}{"nested": map[string]interface{}{"custom": 1}}) {
		t.Error("unknown object shape should compare by equality")
	}
	if f.Matches(map[string]interface{}{"nested": map[string]interface{}{"custom": 2}}) {
		t.Error("different map should not be equal")
	}
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	f := mustParse(t, nil)
	if !f.Matches(nil) || !f.Matches(map[string]interface{}{"any": "thing"}) {
		t.Error("empty filter should match everything")
	}
	if !f.Empty() {
		t.Error("filter with no conditions should report Empty")
	}
}

func TestAllConditionsANDed(t *testing.T) {
	f := mustParse(t, map[string]interface{}{
		"tag":   "a",
		"score": map[string]interface{}{"min": 3},
	})
	if !f.Matches(map[string]interface{}{"tag": "a", "score": 5}) {
		t.Error("both conditions satisfied should match")
	}
	if f.Matches(map[string]interface{}{"tag": "a", "score": 1}) {
		t.Error("one failing condition should reject")
	}
}
