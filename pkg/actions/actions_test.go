package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zen-systems/listingsmith/pkg/access"
	"github.com/zen-systems/listingsmith/pkg/listing"
	"github.com/zen-systems/listingsmith/pkg/store"
)

type recordingGenerator struct {
	caption listing.CaptionRequest
	price   listing.PriceRequest
	calls   int
}

func (g *recordingGenerator) Caption(_ context.Context, req listing.CaptionRequest) (string, error) {
	g.calls++
	g.caption = req
	return "caption", nil
}

func (g *recordingGenerator) Tags(context.Context, listing.TagsRequest) ([]string, error) {
	g.calls++
	return []string{"tag"}, nil
}

func (g *recordingGenerator) PriceSuggestion(_ context.Context, req listing.PriceRequest) (listing.PriceSuggestion, error) {
	g.calls++
	g.price = req
	return listing.PriceSuggestion{Suggested: 1}, nil
}

func (g *recordingGenerator) AutoFill(context.Context, listing.AutoFillRequest) (listing.AutoFillInfo, error) {
	g.calls++
	return listing.AutoFillInfo{}, nil
}

func newFixture() (*Service, *store.Memory, *recordingGenerator) {
	mem := store.NewMemory()
	mem.PutUser(store.User{ID: "free", Role: access.RoleFree})
	mem.PutUser(store.User{ID: "pro", Role: access.RolePremium, CaptionTemplate: "Saved: {model}"})
	mem.PutUser(store.User{ID: "admin", Role: access.RoleAdmin})
	gen := &recordingGenerator{}
	return NewService(mem, mem, gen), mem, gen
}

func TestFreeUserDenied(t *testing.T) {
	svc, _, gen := newFixture()
	ctx := context.Background()

	if _, err := svc.GenerateCaption(ctx, "free", listing.CaptionRequest{Model: "x"}); !errors.Is(err, access.ErrAIRestricted) {
		t.Fatalf("caption: expected ErrAIRestricted, got %v", err)
	}
	if _, err := svc.GenerateTags(ctx, "free", listing.TagsRequest{Model: "x"}); !errors.Is(err, access.ErrAIRestricted) {
		t.Fatalf("tags: expected ErrAIRestricted, got %v", err)
	}
	if _, err := svc.GetPriceSuggestion(ctx, "free", PriceInput{Model: "x"}); !errors.Is(err, access.ErrAIRestricted) {
		t.Fatalf("price: expected ErrAIRestricted, got %v", err)
	}
	if _, err := svc.GetAutoFillInfo(ctx, "free", listing.AutoFillRequest{Model: "x"}); !errors.Is(err, access.ErrAIRestricted) {
		t.Fatalf("autofill: expected ErrAIRestricted, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generation calls, got %d", gen.calls)
	}
}

func TestUnknownUser(t *testing.T) {
	svc, _, _ := newFixture()
	if _, err := svc.GenerateTags(context.Background(), "ghost", listing.TagsRequest{Model: "x"}); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCaptionUsesSavedTemplate(t *testing.T) {
	svc, _, gen := newFixture()
	if _, err := svc.GenerateCaption(context.Background(), "pro", listing.CaptionRequest{Model: "Pixel 8"}); err != nil {
		t.Fatalf("caption: %v", err)
	}
	if gen.caption.Template != "Saved: {model}" {
		t.Fatalf("expected saved template, got %q", gen.caption.Template)
	}

	if _, err := svc.GenerateCaption(context.Background(), "pro", listing.CaptionRequest{Model: "Pixel 8", Template: "Mine"}); err != nil {
		t.Fatalf("caption: %v", err)
	}
	if gen.caption.Template != "Mine" {
		t.Fatalf("expected supplied template, got %q", gen.caption.Template)
	}
}

func TestPriceSuggestionGathersContext(t *testing.T) {
	svc, mem, gen := newFixture()
	mem.AddPhone(store.Phone{OwnerID: "admin", Name: "iPhone 13 Blue", Condition: "Mint", Status: store.StatusSold, SellingPrice: 26000, SoldAt: time.Now()})
	mem.AddPhone(store.Phone{OwnerID: "pro", Name: "iPhone 13", Condition: "Good", Status: store.StatusSold, SellingPrice: 1})

	_, err := svc.GetPriceSuggestion(context.Background(), "admin", PriceInput{
		Model:          "iphone 13",
		MarketplaceMin: 20000,
		MarketplaceMax: 28000,
	})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if len(gen.price.PastSales) != 1 || gen.price.PastSales[0].Price != 26000 {
		t.Fatalf("expected the admin's sale only, got %+v", gen.price.PastSales)
	}
	if gen.price.MarketplaceRange == nil || *gen.price.MarketplaceRange != (listing.PriceRange{Min: 20000, Max: 28000}) {
		t.Fatalf("unexpected range: %+v", gen.price.MarketplaceRange)
	}
}

func TestPriceSuggestionIgnoresPartialRange(t *testing.T) {
	svc, _, gen := newFixture()
	if _, err := svc.GetPriceSuggestion(context.Background(), "pro", PriceInput{Model: "S22", MarketplaceMin: 10000}); err != nil {
		t.Fatalf("price: %v", err)
	}
	if gen.price.MarketplaceRange != nil {
		t.Fatalf("expected no range, got %+v", gen.price.MarketplaceRange)
	}
}

func TestPriceSuggestionRequiresModel(t *testing.T) {
	svc, _, gen := newFixture()
	if _, err := svc.GetPriceSuggestion(context.Background(), "pro", PriceInput{}); !errors.Is(err, listing.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generation call")
	}
}
