// Package parse extracts JSON objects embedded in model output. Parsing
// never fails: anything missing or malformed keeps the caller's fallback.
package parse

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zen-systems/listingsmith/pkg/listing"
)

// Object returns the span from the first '{' to the last '}' in raw when
// that span is a valid JSON object.
func Object(raw string) (gjson.Result, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return gjson.Result{}, false
	}
	span := raw[start : end+1]
	if !gjson.Valid(span) {
		return gjson.Result{}, false
	}
	obj := gjson.Parse(span)
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	return obj, true
}

// Decode locates the embedded object in raw and lets merge overwrite the
// fields of a copy of fallback. Without an object, fallback is returned.
func Decode[T any](raw string, fallback T, merge func(obj gjson.Result, out *T)) T {
	obj, ok := Object(raw)
	if !ok {
		return fallback
	}
	out := fallback
	merge(obj, &out)
	return out
}

// Number returns obj[key] when it is a finite non-negative JSON number.
func Number(obj gjson.Result, key string, fallback float64) float64 {
	r := obj.Get(key)
	if r.Type != gjson.Number {
		return fallback
	}
	v := r.Float()
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fallback
	}
	return v
}

// Strings returns the non-empty string elements of the array obj[key].
func Strings(obj gjson.Result, key string, fallback []string) []string {
	r := obj.Get(key)
	if !r.IsArray() {
		return fallback
	}
	var out []string
	for _, item := range r.Array() {
		if item.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.Str); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// Range returns the {min, max} object at obj[key]. Each bound falls back
// independently; an inverted result falls back whole.
func Range(obj gjson.Result, key string, fallback listing.PriceRange) listing.PriceRange {
	r := obj.Get(key)
	if !r.IsObject() {
		return fallback
	}
	out := listing.PriceRange{
		Min: Number(r, "min", fallback.Min),
		Max: Number(r, "max", fallback.Max),
	}
	if out.Min > out.Max {
		return fallback
	}
	return out
}

// Price decodes a price suggestion over fallback.
func Price(raw string, fallback listing.PriceSuggestion) listing.PriceSuggestion {
	return Decode(raw, fallback, func(obj gjson.Result, out *listing.PriceSuggestion) {
		out.Suggested = Number(obj, "suggested", out.Suggested)
		out.Rush = Number(obj, "rush", out.Rush)
		out.Safe = Number(obj, "safe", out.Safe)
		out.High = Number(obj, "high", out.High)
	})
}

// AutoFill decodes catalog metadata over fallback.
func AutoFill(raw string, fallback listing.AutoFillInfo) listing.AutoFillInfo {
	return Decode(raw, fallback, func(obj gjson.Result, out *listing.AutoFillInfo) {
		out.StorageOptions = Strings(obj, "storageOptions", out.StorageOptions)
		out.ColorVariants = Strings(obj, "colorVariants", out.ColorVariants)
		out.CommonIssues = Strings(obj, "commonIssues", out.CommonIssues)
		out.ConditionSuggestions = Strings(obj, "conditionSuggestions", out.ConditionSuggestions)
		out.TypicalPriceRange = Range(obj, "typicalPriceRange", out.TypicalPriceRange)
	})
}
