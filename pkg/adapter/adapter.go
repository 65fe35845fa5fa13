package adapter

import "context"

// Adapter is a generative text provider. Generate performs exactly one
// round trip: it sends the prompt and returns the completion text.
type Adapter interface {
	// Generate sends a prompt to the model and returns its completion.
	Generate(ctx context.Context, model string, prompt string) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models. The first entry is the default.
	Models() []string
}

// DefaultModel returns the first model an adapter advertises.
func DefaultModel(a Adapter) string {
	if a == nil {
		return ""
	}
	models := a.Models()
	if len(models) == 0 {
		return ""
	}
	return models[0]
}
