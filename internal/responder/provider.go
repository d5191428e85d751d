package responder

import "context"

// Request contains answer-generation parameters for one visitor turn
type Request struct {
	Message   string
	Dialect   string
	BrandName string
	Knowledge []string
	History   []HistoryTurn
}

// HistoryTurn is one prior turn passed to the provider for context
type HistoryTurn struct {
	Role    string
	Content string
}

// Response contains the generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for answer-generation backends. The
// pipeline makes exactly one Generate attempt per inbound message.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate produces an answer for the visitor's message
	Generate(ctx context.Context, req Request, model string) (*Response, error)
}
