// Package filter evaluates the metadata predicates a search query can
// attach to narrow down an already-ranked result set. Filtering happens
// after k-NN ranking, never before, so a query can legitimately return
// fewer than k results.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Filters maps a metadata key to either a raw scalar (equality) or an
// operator spec ({"operator": ..., "value": ...}). It is the wire shape
// a search query carries.
type Filters map[string]interface{}

// Spec is the advanced form of one filter entry: apply Operator to the
// chunk's metadata value against Value.
type Spec struct {
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}

// Validate compiles every "regex" operator spec in f, surfacing a
// malformed pattern before it reaches Matches, where a compile failure
// would otherwise be silently treated as a non-match.
func Validate(f Filters) error {
	for _, want := range f {
		spec, isSpec := asSpec(want)
		if !isSpec || spec.Operator != "regex" {
			continue
		}
		pattern, ok := spec.Value.(string)
		if !ok {
			return fmt.Errorf("regex filter value must be a string, got %T", spec.Value)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether metadata satisfies every predicate in f. A
// metadata key absent from metadata always fails the match.
func Matches(metadata map[string]interface{}, f Filters) bool {
	for key, want := range f {
		got, ok := metadata[key]
		if !ok {
			return false
		}

		if spec, isSpec := asSpec(want); isSpec {
			if !evaluate(got, spec) {
				return false
			}
			continue
		}
		if !equal(got, want) {
			return false
		}
	}
	return true
}

// asSpec recognizes the {"operator": ..., "value": ...} shape, whether it
// arrived as a Spec struct or as a decoded map[string]interface{} (the
// common case when Filters is unmarshaled from JSON).
func asSpec(v interface{}) (Spec, bool) {
	switch t := v.(type) {
	case Spec:
		return t, true
	case map[string]interface{}:
		op, ok := t["operator"]
		if !ok {
			return Spec{}, false
		}
		opStr, ok := op.(string)
		if !ok {
			return Spec{}, false
		}
		return Spec{Operator: opStr, Value: t["value"]}, true
	default:
		return Spec{}, false
	}
}

// evaluate applies one operator. An unrecognized operator falls back to
// equality.
func evaluate(chunkValue interface{}, spec Spec) bool {
	switch spec.Operator {
	case "gt":
		cmp, ok := compare(chunkValue, spec.Value)
		return ok && cmp > 0
	case "gte":
		cmp, ok := compare(chunkValue, spec.Value)
		return ok && cmp >= 0
	case "lt":
		cmp, ok := compare(chunkValue, spec.Value)
		return ok && cmp < 0
	case "lte":
		cmp, ok := compare(chunkValue, spec.Value)
		return ok && cmp <= 0
	case "contains":
		cs, ok1 := chunkValue.(string)
		fs, ok2 := spec.Value.(string)
		if !ok1 || !ok2 {
			return false
		}
		return strings.Contains(strings.ToLower(cs), strings.ToLower(fs))
	case "in":
		return containsAny(spec.Value, chunkValue)
	case "not_in":
		return !containsAny(spec.Value, chunkValue)
	case "regex":
		pattern, ok := spec.Value.(string)
		if !ok {
			return false
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(fmt.Sprint(chunkValue))
	default:
		return equal(chunkValue, spec.Value)
	}
}

// compare orders two metadata values numerically when both are numbers,
// or lexically when both are strings. Any other combination can't be
// ordered and reports ok=false, which the gt/gte/lt/lte branches treat
// as "no match" rather than panicking.
func compare(a, b interface{}) (int, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// containsAny reports whether needle equals any element of haystack,
// which must be a slice (typically []interface{} after JSON decoding).
// When needle is itself a list (a list-valued metadata field), it reports
// whether any of needle's elements is in haystack.
func containsAny(haystack interface{}, needle interface{}) bool {
	if list, ok := needle.([]interface{}); ok {
		for _, n := range list {
			if containsAny(haystack, n) {
				return true
			}
		}
		return false
	}
	switch h := haystack.(type) {
	case []interface{}:
		for _, v := range h {
			if equal(v, needle) {
				return true
			}
		}
		return false
	case []string:
		s, ok := needle.(string)
		if !ok {
			return false
		}
		for _, v := range h {
			if v == s {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equal(a, b interface{}) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}
