package generate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zen-systems/listingsmith/pkg/adapter"
	"github.com/zen-systems/listingsmith/pkg/listing"
	"github.com/zen-systems/listingsmith/pkg/pricing"
	"github.com/zen-systems/listingsmith/pkg/retry"
)

func instantController(delays *[]time.Duration) *retry.Controller {
	c := retry.NewController(nil)
	c.Sleep = func(_ context.Context, d time.Duration) error {
		if delays != nil {
			*delays = append(*delays, d)
		}
		return nil
	}
	return c
}

func newTestService(m *adapter.MockAdapter, delays *[]time.Duration) *Service {
	return NewService(m, WithController(instantController(delays)))
}

func TestNotConfiguredFailsFast(t *testing.T) {
	s := NewService(nil)
	ctx := context.Background()

	if _, err := s.Caption(ctx, listing.CaptionRequest{Model: "iPhone 13"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("caption: expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.Tags(ctx, listing.TagsRequest{Model: "iPhone 13"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("tags: expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.PriceSuggestion(ctx, listing.PriceRequest{Model: "iPhone 13"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("price: expected ErrNotConfigured, got %v", err)
	}
	if _, err := s.AutoFill(ctx, listing.AutoFillRequest{Model: "iPhone 13"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("autofill: expected ErrNotConfigured, got %v", err)
	}
}

func TestValidationHappensBeforeCall(t *testing.T) {
	m := adapter.NewMockAdapter()
	s := newTestService(m, nil)
	if _, err := s.Caption(context.Background(), listing.CaptionRequest{}); !errors.Is(err, listing.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if m.Calls() != 0 {
		t.Fatalf("expected no adapter calls, got %d", m.Calls())
	}
}

func TestCaptionSanitizesOutput(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{Text: "Here's a caption: **Great phone!** #forsale"})
	got, err := newTestService(m, nil).Caption(context.Background(), listing.CaptionRequest{
		Model:    "iPhone 13",
		Template: "{model} for sale",
	})
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if got != "Great phone! #forsale" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(m.Prompts()[0], "iPhone 13 for sale") {
		t.Fatalf("expected filled template in prompt")
	}
}

func TestCaptionRetriesTransientFailure(t *testing.T) {
	var delays []time.Duration
	m := adapter.NewScriptedAdapter(
		adapter.MockReply{Err: errors.New("[503 Service Unavailable] The model is overloaded")},
		adapter.MockReply{Text: "Selling my Pixel 7"},
	)
	got, err := newTestService(m, &delays).Caption(context.Background(), listing.CaptionRequest{Model: "Pixel 7"})
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if got != "Selling my Pixel 7" {
		t.Fatalf("got %q", got)
	}
	if m.Calls() != 2 || len(delays) != 1 || delays[0] != time.Second {
		t.Fatalf("expected one retry after 1s, calls=%d delays=%v", m.Calls(), delays)
	}
}

func TestCaptionQuotaIsTerminal(t *testing.T) {
	var delays []time.Duration
	m := adapter.NewScriptedAdapter(
		adapter.MockReply{Err: errors.New("[429 Too Many Requests] You exceeded your current quota")},
		adapter.MockReply{Text: "never reached"},
	)
	_, err := newTestService(m, &delays).Caption(context.Background(), listing.CaptionRequest{Model: "Pixel 7"})
	if !errors.Is(err, retry.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if m.Calls() != 1 || len(delays) != 0 {
		t.Fatalf("expected no retry, calls=%d delays=%v", m.Calls(), delays)
	}
}

func TestCaptionFailsAfterRetriesExhausted(t *testing.T) {
	overloaded := errors.New("model overloaded")
	m := adapter.NewScriptedAdapter(
		adapter.MockReply{Err: overloaded},
		adapter.MockReply{Err: overloaded},
		adapter.MockReply{Err: overloaded},
	)
	_, err := newTestService(m, nil).Caption(context.Background(), listing.CaptionRequest{Model: "Pixel 7"})
	if !errors.Is(err, overloaded) {
		t.Fatalf("expected final error, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed to generate caption") {
		t.Fatalf("expected operation in message, got %q", err.Error())
	}
	if m.Calls() != 3 {
		t.Fatalf("expected 3 attempts, got %d", m.Calls())
	}
}

func TestCaptionEmptyResult(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{Text: "**  **"})
	if _, err := newTestService(m, nil).Caption(context.Background(), listing.CaptionRequest{Model: "Pixel 7"}); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestTagsNormalized(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{Text: "tag1, Tag1, tag2,, tag3"})
	got, err := newTestService(m, nil).Tags(context.Background(), listing.TagsRequest{Model: "Galaxy S22"})
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"tag1", "tag2", "tag3"}) {
		t.Fatalf("got %v", got)
	}
}

func TestTagsEmptyIsError(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{Text: " , , "})
	if _, err := newTestService(m, nil).Tags(context.Background(), listing.TagsRequest{Model: "Galaxy S22"}); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestPriceSuggestion(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{
		Text: `Sure, here you go: {"suggested": 25000, "rush": 23000, "safe": 24000, "high": 27000}`,
	})
	got, err := newTestService(m, nil).PriceSuggestion(context.Background(), listing.PriceRequest{
		Model:     "iPhone 13",
		Storage:   "128GB",
		Condition: "Good",
		PastSales: []listing.Sale{{Price: 24500, Condition: "Good"}},
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if got != (listing.PriceSuggestion{Suggested: 25000, Rush: 23000, Safe: 24000, High: 27000}) {
		t.Fatalf("got %+v", got)
	}
	if !strings.Contains(m.Prompts()[0], "- Good: ₱24,500") {
		t.Fatalf("expected past sale in prompt:\n%s", m.Prompts()[0])
	}
}

func TestPriceSuggestionFallback(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{Text: "It depends."})
	got, err := newTestService(m, nil).PriceSuggestion(context.Background(), listing.PriceRequest{Model: "iPhone 13"})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if got != pricing.Placeholder {
		t.Fatalf("expected placeholder, got %+v", got)
	}
}

func TestAutoFill(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{
		Text: `{"storageOptions": ["128GB", "256GB"], "colorVariants": ["Midnight"], "typicalPriceRange": {"min": 20000, "max": 35000}}`,
	})
	got, err := newTestService(m, nil).AutoFill(context.Background(), listing.AutoFillRequest{Model: "iPhone 14"})
	if err != nil {
		t.Fatalf("autofill: %v", err)
	}
	if !reflect.DeepEqual(got.StorageOptions, []string{"128GB", "256GB"}) {
		t.Fatalf("storage: %v", got.StorageOptions)
	}
	if !reflect.DeepEqual(got.CommonIssues, DefaultAutoFill().CommonIssues) {
		t.Fatalf("issues should fall back: %v", got.CommonIssues)
	}
	if got.TypicalPriceRange != (listing.PriceRange{Min: 20000, Max: 35000}) {
		t.Fatalf("range: %+v", got.TypicalPriceRange)
	}
}

func TestAutoFillUnparseable(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{Text: "I don't know that phone."})
	got, err := newTestService(m, nil).AutoFill(context.Background(), listing.AutoFillRequest{Model: "Mystery X"})
	if err != nil {
		t.Fatalf("autofill: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultAutoFill()) {
		t.Fatalf("expected defaults, got %+v", got)
	}
}

func TestWithModelOverride(t *testing.T) {
	m := adapter.NewScriptedAdapter(adapter.MockReply{Text: "ok"})
	s := NewService(m, WithModel("custom-model"), WithController(instantController(nil)))
	if _, err := s.Caption(context.Background(), listing.CaptionRequest{Model: "Pixel"}); err != nil {
		t.Fatalf("caption: %v", err)
	}
	if s.model != "custom-model" {
		t.Fatalf("expected model override, got %q", s.model)
	}
}

type meteredAdapter struct{}

func (meteredAdapter) Name() string     { return "metered" }
func (meteredAdapter) Models() []string { return []string{"metered-1"} }

func (meteredAdapter) Generate(_ context.Context, model, _ string) (*adapter.Response, error) {
	return &adapter.Response{
		Text:    "Selling my Pixel 7",
		Adapter: "metered",
		Model:   model,
		Usage:   &adapter.Usage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150},
	}, nil
}

func TestUsageIsLoggedAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := NewService(meteredAdapter{}, WithLogger(zap.New(core)), WithController(instantController(nil)))

	if _, err := s.Caption(context.Background(), listing.CaptionRequest{Model: "Pixel 7"}); err != nil {
		t.Fatalf("caption: %v", err)
	}

	if kinds := logs.FilterMessage("generating").All(); len(kinds) != 1 || kinds[0].ContextMap()["kind"] != "caption" {
		t.Fatalf("expected one generating entry for caption, got %v", kinds)
	}
	entries := logs.FilterMessage("generation usage").All()
	if len(entries) != 1 {
		t.Fatalf("expected one usage entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["total_tokens"] != int64(150) || fields["model"] != "metered-1" {
		t.Fatalf("unexpected usage fields: %v", fields)
	}
}
