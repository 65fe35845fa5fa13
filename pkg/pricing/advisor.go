// Package pricing turns sales history and marketplace bounds into price points.
package pricing

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/zen-systems/listingsmith/pkg/listing"
	"github.com/zen-systems/listingsmith/pkg/parse"
	"github.com/zen-systems/listingsmith/pkg/prompt"
)

// Placeholder is returned when the model's answer holds no usable JSON.
// It is not an estimate.
var Placeholder = listing.PriceSuggestion{
	Suggested: 20000,
	Rush:      18000,
	Safe:      19000,
	High:      22000,
}

// Completer performs one logical generation call for a prompt.
type Completer func(ctx context.Context, prompt string) (string, error)

// Advisor produces price suggestions.
type Advisor struct {
	complete Completer
	logger   *zap.Logger
}

// NewAdvisor creates an Advisor that generates through complete.
func NewAdvisor(complete Completer, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{complete: complete, logger: logger}
}

// Suggest asks the model for four price points. When a marketplace range is
// present every returned value is clamped into it.
func (a *Advisor) Suggest(ctx context.Context, req listing.PriceRequest) (listing.PriceSuggestion, error) {
	if err := req.Validate(); err != nil {
		return listing.PriceSuggestion{}, err
	}
	if a.complete == nil {
		return listing.PriceSuggestion{}, fmt.Errorf("price advisor has no generator")
	}
	if len(req.PastSales) > prompt.MaxPastSales {
		req.PastSales = req.PastSales[:prompt.MaxPastSales]
	}

	p, err := prompt.Build(req)
	if err != nil {
		return listing.PriceSuggestion{}, err
	}
	text, err := a.complete(ctx, p)
	if err != nil {
		return listing.PriceSuggestion{}, err
	}

	if _, ok := parse.Object(text); !ok {
		a.logger.Warn("price response held no JSON object, using placeholder prices",
			zap.String("model", req.Model))
	}
	suggestion := parse.Price(text, Placeholder)

	if req.MarketplaceRange != nil {
		clamped := Clamp(suggestion, *req.MarketplaceRange)
		if clamped != suggestion {
			a.logger.Info("clamped price suggestion into marketplace range",
				zap.String("model", req.Model),
				zap.Float64("min", req.MarketplaceRange.Min),
				zap.Float64("max", req.MarketplaceRange.Max),
			)
		}
		suggestion = clamped
	}
	return suggestion, nil
}

// Clamp limits every price point to r and restores the order
// rush <= safe <= suggested <= high. Suggested is the anchor; the others
// move toward it, so every value stays inside r.
func Clamp(s listing.PriceSuggestion, r listing.PriceRange) listing.PriceSuggestion {
	out := listing.PriceSuggestion{
		Suggested: r.Clamp(s.Suggested),
		Rush:      r.Clamp(s.Rush),
		Safe:      r.Clamp(s.Safe),
		High:      r.Clamp(s.High),
	}
	out.High = math.Max(out.High, out.Suggested)
	out.Safe = math.Min(out.Safe, out.Suggested)
	out.Rush = math.Min(out.Rush, out.Safe)
	return out
}
