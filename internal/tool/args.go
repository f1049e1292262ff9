// args.go provides typed access to the generic argument map.
//
// Arguments arrive as decoded JSON, so numbers are float64 (or json.Number
// when the decoder was told to keep them) and clients sometimes send numbers
// as strings. The accessors accept all of these and fall back to the caller's
// default rather than failing; presence of required fields is checked before
// any handler sees the arguments.

package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Args is the raw argument map of a request.
type Args map[string]any

// Present reports whether name holds a usable value: set, not null and not
// an empty string. Values of any other type count as present.
func (a Args) Present(name string) bool {
	v, ok := a[name]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

// String returns the string value of name, or def when missing.
// Non-string scalars are formatted; composite values are encoded as JSON.
func (a Args) String(name, def string) string {
	v, ok := a[name]
	if !ok || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool, int, int64, json.Number:
		return fmt.Sprint(s)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return def
		}
		return string(b)
	}
}

// Int returns the integer value of name, or def when missing or not numeric.
// Fractional values are truncated toward zero; values outside the int range
// saturate.
func (a Args) Int(name string, def int) int {
	v, ok := a[name]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return def
		}
		return clampInt(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) {
			return clampInt(f)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
			return clampInt(f)
		}
	}
	return def
}

// clampInt converts f to int, saturating at the int range. Conversion of
// an out-of-range float is implementation-defined in Go.
func clampInt(f float64) int {
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// Names returns the sorted argument keys. Values are never exposed, which
// makes the result safe to log.
func (a Args) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
