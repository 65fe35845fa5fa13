package parse

import (
	"reflect"
	"testing"

	"github.com/zen-systems/listingsmith/pkg/listing"
)

var priceFallback = listing.PriceSuggestion{Suggested: 20000, Rush: 18000, Safe: 19000, High: 22000}

func autoFillFallback() listing.AutoFillInfo {
	return listing.AutoFillInfo{
		StorageOptions:       []string{"64GB", "128GB"},
		ColorVariants:        []string{"Black"},
		CommonIssues:         []string{"Normal wear"},
		ConditionSuggestions: []string{"Mint", "Good"},
		TypicalPriceRange:    listing.PriceRange{Min: 15000, Max: 30000},
	}
}

func TestPriceFromChattyResponse(t *testing.T) {
	raw := `Sure, here you go: {"suggested": 25000, "rush": 23000, "safe": 24000, "high": 27000}`
	got := Price(raw, priceFallback)
	want := listing.PriceSuggestion{Suggested: 25000, Rush: 23000, Safe: 24000, High: 27000}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestPriceWithoutBracesReturnsFallback(t *testing.T) {
	if got := Price("I cannot price this phone.", priceFallback); got != priceFallback {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

func TestPriceInvalidJSONReturnsFallback(t *testing.T) {
	if got := Price(`{"suggested": 25000, "rush": }`, priceFallback); got != priceFallback {
		t.Fatalf("expected fallback, got %+v", got)
	}
	if got := Price(`} backwards {`, priceFallback); got != priceFallback {
		t.Fatalf("expected fallback, got %+v", got)
	}
}

func TestPriceMergesFieldByField(t *testing.T) {
	raw := "```json\n{\"suggested\": 26000, \"rush\": \"cheap\", \"safe\": -5, \"extra\": true}\n```"
	got := Price(raw, priceFallback)
	want := listing.PriceSuggestion{Suggested: 26000, Rush: 18000, Safe: 19000, High: 22000}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestAutoFillParsesObject(t *testing.T) {
	raw := `Here is the data:
{
  "storageOptions": ["128GB", "256GB", ""],
  "colorVariants": ["Midnight", 7, "Starlight"],
  "commonIssues": "none",
  "conditionSuggestions": [],
  "typicalPriceRange": {"min": 18000, "max": 32000}
}`
	got := AutoFill(raw, autoFillFallback())
	fb := autoFillFallback()

	if !reflect.DeepEqual(got.StorageOptions, []string{"128GB", "256GB"}) {
		t.Fatalf("storage: %v", got.StorageOptions)
	}
	if !reflect.DeepEqual(got.ColorVariants, []string{"Midnight", "Starlight"}) {
		t.Fatalf("colors: %v", got.ColorVariants)
	}
	if !reflect.DeepEqual(got.CommonIssues, fb.CommonIssues) {
		t.Fatalf("issues should fall back: %v", got.CommonIssues)
	}
	if !reflect.DeepEqual(got.ConditionSuggestions, fb.ConditionSuggestions) {
		t.Fatalf("conditions should fall back: %v", got.ConditionSuggestions)
	}
	if got.TypicalPriceRange != (listing.PriceRange{Min: 18000, Max: 32000}) {
		t.Fatalf("range: %+v", got.TypicalPriceRange)
	}
}

func TestAutoFillRangeFallbacks(t *testing.T) {
	fb := autoFillFallback()

	partial := AutoFill(`{"typicalPriceRange": {"min": 20000}}`, fb)
	if partial.TypicalPriceRange != (listing.PriceRange{Min: 20000, Max: 30000}) {
		t.Fatalf("partial range: %+v", partial.TypicalPriceRange)
	}

	inverted := AutoFill(`{"typicalPriceRange": {"min": 40000, "max": 10000}}`, fb)
	if inverted.TypicalPriceRange != fb.TypicalPriceRange {
		t.Fatalf("inverted range should fall back: %+v", inverted.TypicalPriceRange)
	}

	wrongKind := AutoFill(`{"typicalPriceRange": [1, 2]}`, fb)
	if wrongKind.TypicalPriceRange != fb.TypicalPriceRange {
		t.Fatalf("array range should fall back: %+v", wrongKind.TypicalPriceRange)
	}
}

func TestObjectRejectsNonObjects(t *testing.T) {
	if _, ok := Object(`no json`); ok {
		t.Fatalf("expected no object")
	}
	if _, ok := Object(`{"a": 1}`); !ok {
		t.Fatalf("expected object")
	}
}
