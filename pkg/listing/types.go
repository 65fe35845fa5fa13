package listing

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidRequest is returned when a request is missing required fields.
var ErrInvalidRequest = errors.New("invalid generation request")

// Kind identifies the type of generation request.
type Kind string

const (
	KindCaption  Kind = "caption"
	KindTags     Kind = "tags"
	KindPrice    Kind = "price"
	KindAutoFill Kind = "autofill"
)

// Request is implemented by every generation request.
type Request interface {
	// Kind returns the request kind.
	Kind() Kind

	// Validate reports missing or inconsistent fields.
	Validate() error
}

// CaptionRequest asks for a marketplace caption.
type CaptionRequest struct {
	Model     string `json:"model"`
	Condition string `json:"condition,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Variant   string `json:"variant,omitempty"`
	RAM       string `json:"ram,omitempty"`
	Template  string `json:"template,omitempty"`
}

// TagsRequest asks for search keywords.
type TagsRequest struct {
	Model   string `json:"model"`
	Storage string `json:"storage,omitempty"`
	Variant string `json:"variant,omitempty"`
}

// Sale is a past sale of the same model used as pricing context.
type Sale struct {
	Price     float64 `json:"price"`
	Condition string  `json:"condition"`
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceRequest asks for price points.
type PriceRequest struct {
	Model            string      `json:"model"`
	Storage          string      `json:"storage,omitempty"`
	Condition        string      `json:"condition,omitempty"`
	PastSales        []Sale      `json:"past_sales,omitempty"`
	MarketplaceRange *PriceRange `json:"marketplace_range,omitempty"`
}

// AutoFillRequest asks for catalog metadata about a model.
type AutoFillRequest struct {
	Model string `json:"model"`
}

// PriceSuggestion holds the four price points returned for a listing.
type PriceSuggestion struct {
	Suggested float64 `json:"suggested"`
	Rush      float64 `json:"rush"`
	Safe      float64 `json:"safe"`
	High      float64 `json:"high"`
}

// AutoFillInfo holds inferred catalog metadata for a model.
type AutoFillInfo struct {
	StorageOptions       []string   `json:"storageOptions"`
	ColorVariants        []string   `json:"colorVariants"`
	CommonIssues         []string   `json:"commonIssues"`
	ConditionSuggestions []string   `json:"conditionSuggestions"`
	TypicalPriceRange    PriceRange `json:"typicalPriceRange"`
}

func (CaptionRequest) Kind() Kind  { return KindCaption }
func (TagsRequest) Kind() Kind     { return KindTags }
func (PriceRequest) Kind() Kind    { return KindPrice }
func (AutoFillRequest) Kind() Kind { return KindAutoFill }

func (r CaptionRequest) Validate() error  { return requireModel(r.Model) }
func (r TagsRequest) Validate() error     { return requireModel(r.Model) }
func (r AutoFillRequest) Validate() error { return requireModel(r.Model) }

func (r PriceRequest) Validate() error {
	if err := requireModel(r.Model); err != nil {
		return err
	}
	if r.MarketplaceRange != nil {
		if err := r.MarketplaceRange.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the range is finite, non-negative and ordered.
func (r PriceRange) Validate() error {
	if !validAmount(r.Min) || !validAmount(r.Max) {
		return fmt.Errorf("%w: marketplace range must be finite and non-negative", ErrInvalidRequest)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: marketplace min %.0f exceeds max %.0f", ErrInvalidRequest, r.Min, r.Max)
	}
	return nil
}

// Clamp returns v limited to the range.
func (r PriceRange) Clamp(v float64) float64 {
	return math.Min(math.Max(v, r.Min), r.Max)
}

func requireModel(model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("%w: model is required", ErrInvalidRequest)
	}
	return nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
