// Package actions is the per-user entry point to the AI tools. It checks
// the caller's tier and gathers stored context before generating.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/listingsmith/pkg/access"
	"github.com/zen-systems/listingsmith/pkg/listing"
	"github.com/zen-systems/listingsmith/pkg/prompt"
	"github.com/zen-systems/listingsmith/pkg/store"
)

// Generator is the set of generation operations Actions delegates to.
type Generator interface {
	Caption(ctx context.Context, req listing.CaptionRequest) (string, error)
	Tags(ctx context.Context, req listing.TagsRequest) ([]string, error)
	PriceSuggestion(ctx context.Context, req listing.PriceRequest) (listing.PriceSuggestion, error)
	AutoFill(ctx context.Context, req listing.AutoFillRequest) (listing.AutoFillInfo, error)
}

// PriceInput is a price request as submitted by a user. Marketplace bounds
// are used only when both are positive.
type PriceInput struct {
	Model          string  `json:"model"`
	Storage        string  `json:"storage"`
	Condition      string  `json:"condition"`
	MarketplaceMin float64 `json:"marketplace_min,omitempty"`
	MarketplaceMax float64 `json:"marketplace_max,omitempty"`
}

// Service implements the AI actions.
type Service struct {
	users     store.Users
	sales     store.Sales
	generator Generator
}

// NewService creates a Service.
func NewService(users store.Users, sales store.Sales, generator Generator) *Service {
	return &Service{users: users, sales: sales, generator: generator}
}

// GenerateCaption generates a caption, falling back to the user's saved
// template when none is supplied.
func (s *Service) GenerateCaption(ctx context.Context, userID string, req listing.CaptionRequest) (string, error) {
	if err := s.checkAccess(ctx, userID); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Template) == "" {
		saved, err := s.users.CaptionTemplate(ctx, userID)
		if err != nil {
			return "", err
		}
		req.Template = saved
	}
	return s.generator.Caption(ctx, req)
}

// GenerateTags generates search tags.
func (s *Service) GenerateTags(ctx context.Context, userID string, req listing.TagsRequest) ([]string, error) {
	if err := s.checkAccess(ctx, userID); err != nil {
		return nil, err
	}
	return s.generator.Tags(ctx, req)
}

// GetPriceSuggestion suggests prices using the user's recent sales of the
// same model as context.
func (s *Service) GetPriceSuggestion(ctx context.Context, userID string, in PriceInput) (listing.PriceSuggestion, error) {
	if err := s.checkAccess(ctx, userID); err != nil {
		return listing.PriceSuggestion{}, err
	}

	req := listing.PriceRequest{
		Model:     in.Model,
		Storage:   in.Storage,
		Condition: in.Condition,
	}
	if err := req.Validate(); err != nil {
		return listing.PriceSuggestion{}, err
	}

	sales, err := s.sales.RecentSold(ctx, userID, in.Model, prompt.MaxPastSales)
	if err != nil {
		return listing.PriceSuggestion{}, fmt.Errorf("failed to load past sales: %w", err)
	}
	req.PastSales = sales

	if in.MarketplaceMin > 0 && in.MarketplaceMax > 0 {
		req.MarketplaceRange = &listing.PriceRange{Min: in.MarketplaceMin, Max: in.MarketplaceMax}
	}
	return s.generator.PriceSuggestion(ctx, req)
}

// GetAutoFillInfo infers catalog metadata for a model.
func (s *Service) GetAutoFillInfo(ctx context.Context, userID string, req listing.AutoFillRequest) (listing.AutoFillInfo, error) {
	if err := s.checkAccess(ctx, userID); err != nil {
		return listing.AutoFillInfo{}, err
	}
	return s.generator.AutoFill(ctx, req)
}

func (s *Service) checkAccess(ctx context.Context, userID string) error {
	role, err := s.users.Role(ctx, userID)
	if err != nil {
		return err
	}
	return access.RequireAI(role)
}
