// Package generate exposes the AI listing operations: captions, tags,
// price suggestions and catalog auto-fill.
package generate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zen-systems/listingsmith/pkg/adapter"
	"github.com/zen-systems/listingsmith/pkg/listing"
	"github.com/zen-systems/listingsmith/pkg/parse"
	"github.com/zen-systems/listingsmith/pkg/pricing"
	"github.com/zen-systems/listingsmith/pkg/prompt"
	"github.com/zen-systems/listingsmith/pkg/retry"
	"github.com/zen-systems/listingsmith/pkg/sanitize"
)

var (
	// ErrNotConfigured is returned by every operation when no provider
	// credential was configured.
	ErrNotConfigured = errors.New("AI generation is not configured: set the provider API key (e.g. GEMINI_API_KEY)")

	// ErrEmptyResult is returned when the model produced no usable text.
	ErrEmptyResult = errors.New("model returned no usable content")
)

// DefaultAutoFill returns the metadata used when the model's answer
// cannot be parsed.
func DefaultAutoFill() listing.AutoFillInfo {
	return listing.AutoFillInfo{
		StorageOptions:       []string{"64GB", "128GB", "256GB", "512GB"},
		ColorVariants:        []string{"Black", "White", "Blue"},
		CommonIssues:         []string{"Normal wear", "Minor scratches"},
		ConditionSuggestions: []string{"Mint", "Good", "Fair"},
		TypicalPriceRange:    listing.PriceRange{Min: 15000, Max: 30000},
	}
}

// Service runs the generation operations against one adapter. It holds no
// mutable state and is safe for concurrent use.
type Service struct {
	adapter adapter.Adapter
	model   string
	retry   *retry.Controller
	logger  *zap.Logger
	advisor *pricing.Advisor
}

// Option configures a Service.
type Option func(*Service)

// WithModel overrides the adapter's default model.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithController sets the retry controller.
func WithController(c *retry.Controller) Option {
	return func(s *Service) {
		if c != nil {
			s.retry = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service. A nil adapter yields a service whose
// operations all fail with ErrNotConfigured.
func NewService(a adapter.Adapter, opts ...Option) *Service {
	s := &Service{
		adapter: a,
		model:   adapter.DefaultModel(a),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.retry == nil {
		s.retry = retry.NewController(s.logger)
	}
	s.advisor = pricing.NewAdvisor(s.complete, s.logger)
	return s
}

// Configured reports whether an adapter is available.
func (s *Service) Configured() bool {
	return s.adapter != nil
}

// Caption generates a marketplace caption with preambles and markdown removed.
func (s *Service) Caption(ctx context.Context, req listing.CaptionRequest) (string, error) {
	if err := s.ready(req); err != nil {
		return "", err
	}

	text, err := s.generate(ctx, req)
	if err != nil {
		return "", s.fail("caption", req.Model, err)
	}

	caption := sanitize.Caption(text)
	if caption == "" {
		return "", s.fail("caption", req.Model, ErrEmptyResult)
	}
	return caption, nil
}

// Tags generates normalized, deduplicated search keywords.
func (s *Service) Tags(ctx context.Context, req listing.TagsRequest) ([]string, error) {
	if err := s.ready(req); err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, req)
	if err != nil {
		return nil, s.fail("tags", req.Model, err)
	}

	tags := sanitize.Tags(text)
	if len(tags) == 0 {
		return nil, s.fail("tags", req.Model, ErrEmptyResult)
	}
	return tags, nil
}

// PriceSuggestion returns four price points for a listing.
func (s *Service) PriceSuggestion(ctx context.Context, req listing.PriceRequest) (listing.PriceSuggestion, error) {
	if err := s.ready(req); err != nil {
		return listing.PriceSuggestion{}, err
	}

	suggestion, err := s.advisor.Suggest(ctx, req)
	if err != nil {
		return listing.PriceSuggestion{}, s.fail("price suggestion", req.Model, err)
	}
	return suggestion, nil
}

// AutoFill infers catalog metadata for a model. Unparseable answers fall
// back to DefaultAutoFill field by field.
func (s *Service) AutoFill(ctx context.Context, req listing.AutoFillRequest) (listing.AutoFillInfo, error) {
	if err := s.ready(req); err != nil {
		return listing.AutoFillInfo{}, err
	}

	text, err := s.generate(ctx, req)
	if err != nil {
		return listing.AutoFillInfo{}, s.fail("auto-fill", req.Model, err)
	}
	return parse.AutoFill(text, DefaultAutoFill()), nil
}

func (s *Service) ready(req listing.Request) error {
	if !s.Configured() {
		return ErrNotConfigured
	}
	return req.Validate()
}

// generate builds the prompt for req and completes it.
func (s *Service) generate(ctx context.Context, req listing.Request) (string, error) {
	p, err := prompt.Build(req)
	if err != nil {
		return "", err
	}
	s.logger.Debug("generating",
		zap.String("kind", string(req.Kind())),
		zap.Int("prompt_bytes", len(p)),
	)
	return s.complete(ctx, p)
}

// complete performs one logical generation call through the retry controller.
func (s *Service) complete(ctx context.Context, p string) (string, error) {
	if !s.Configured() {
		return "", ErrNotConfigured
	}
	resp, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*adapter.Response, error) {
		return s.adapter.Generate(ctx, s.model, p)
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", ErrEmptyResult
	}
	if u := resp.Usage; u != nil {
		s.logger.Debug("generation usage",
			zap.String("adapter", resp.Adapter),
			zap.String("model", resp.Model),
			zap.Int("prompt_tokens", u.PromptTokens),
			zap.Int("completion_tokens", u.CompletionTokens),
			zap.Int("total_tokens", u.TotalTokens),
		)
	}
	return resp.Text, nil
}

func (s *Service) fail(op, model string, err error) error {
	s.logger.Error("generation failed",
		zap.String("operation", op),
		zap.String("model", model),
		zap.String("adapter", s.adapter.Name()),
		zap.Error(err),
	)
	return fmt.Errorf("failed to generate %s: %w", op, err)
}
