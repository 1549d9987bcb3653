// Package filter provides metadata predicate evaluation for retrieval filtering.
package filter

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// Predicate matches a single metadata field value.
// The concrete type is decided once, when the filter spec is parsed, so
// evaluation never has to sniff the shape of the spec again.
type Predicate interface {
	Match(value interface{}) bool
}

// Equality matches when the field value equals Value. Numeric values compare
// by magnitude (JSON decoding yields float64 for every number).
type Equality struct {
	Value interface{}
}

// Match implements Predicate.
func (p Equality) Match(value interface{}) bool {
	return looseEqual(value, p.Value)
}

// Range matches numeric fields within the inclusive [Min, Max] bounds.
// A nil bound is open. Non-numeric fields never match.
type Range struct {
	Min *float64
	Max *float64
}

// Match implements Predicate.
func (p Range) Match(value interface{}) bool {
	n, ok := toFloat(value)
	if !ok {
		return false
	}
	if p.Min != nil && n < *p.Min {
		return false
	}
	if p.Max != nil && n > *p.Max {
		return false
	}
	return true
}

// Contains matches array-like fields that contain Value as an element.
// Non-array fields never match.
type Contains struct {
	Value interface{}
}

// Match implements Predicate.
func (p Contains) Match(value interface{}) bool {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if looseEqual(rv.Index(i).Interface(), p.Value) {
			return true
		}
	}
	return false
}

// Regex matches string fields against a compiled pattern.
// Non-string fields never match.
type Regex struct {
	Pattern *regexp.Regexp
}

// Match implements Predicate.
func (p Regex) Match(value interface{}) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return p.Pattern.MatchString(s)
}

type condition struct {
	path string
	pred Predicate
}

// Filter is a parsed, immutable set of metadata conditions, ANDed together.
// The zero value (and an empty spec) matches everything.
type Filter struct {
	conditions []condition
}

// ParseSpec builds a Filter from a raw spec mapping field paths to either a
// literal (equality) or a structured predicate object:
//
//	{"min": 1, "max": 10}  inclusive numeric range
//	{"contains": v}        array membership
//	{"regex": "pattern"}   string match
//
// Any other map shape is treated as equality on the map itself. Malformed
// structured predicates (non-numeric bounds, invalid regex) are parse errors.
func ParseSpec(spec map[string]interface{}) (*Filter, error) {
	f := &Filter{}
	// Sorted for deterministic evaluation order.
	paths := make([]string, 0, len(spec))
	for path := range spec {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		pred, err := parsePredicate(spec[path])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", path, err)
		}
		f.conditions = append(f.conditions, condition{path: path, pred: pred})
	}
	return f, nil
}

func parsePredicate(raw interface{}) (Predicate, error) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return Equality{Value: raw}, nil
	}
	rawMin, hasMin := obj["min"]
	rawMax, hasMax := obj["max"]
	if hasMin || hasMax {
		var r Range
		if hasMin {
			n, ok := toFloat(rawMin)
			if !ok {
				return nil, fmt.Errorf("min bound is not numeric: %v", rawMin)
			}
			r.Min = &n
		}
		if hasMax {
			n, ok := toFloat(rawMax)
			if !ok {
				return nil, fmt.Errorf("max bound is not numeric: %v", rawMax)
			}
			r.Max = &n
		}
		return r, nil
	}
	if v, ok := obj["contains"]; ok {
		return Contains{Value: v}, nil
	}
	if v, ok := obj["regex"]; ok {
		pattern, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("regex pattern is not a string: %v", v)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
		return Regex{Pattern: re}, nil
	}
	// Unknown object shape: equality on the whole map.
	return Equality{Value: obj}, nil
}

// Empty reports whether the filter has no conditions.
func (f *Filter) Empty() bool {
	return f == nil || len(f.conditions) == 0
}

// Matches evaluates all conditions against a metadata bag. Field paths may be
// dot-delimited to address nested maps; a missing intermediate segment or a
// wrong-shaped field rejects the fragment rather than erroring, so one
// malformed metadata field can never abort a whole query.
func (f *Filter) Matches(metadata map[string]interface{}) bool {
	if f.Empty() {
		return true
	}
	for _, c := range f.conditions {
		value, ok := resolvePath(metadata, c.path)
		if !ok || !c.pred.Match(value) {
			return false
		}
	}
	return true
}

// resolvePath walks a dot-delimited path through nested maps.
func resolvePath(metadata map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	current := metadata
	for i, segment := range segments {
		if current == nil {
			return nil, false
		}
		value, ok := current[segment]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return value, true
		}
		nested, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = nested
	}
	return nil, false
}

// looseEqual compares values the way JSON-decoded metadata needs: numbers by
// magnitude regardless of concrete type, everything else by deep equality.
func looseEqual(a, b interface{}) bool {
	na, aok := toFloat(a)
	nb, bok := toFloat(b)
	if aok && bok {
		return na == nb
	}
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// toFloat converts the numeric types metadata can carry into a float64.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
