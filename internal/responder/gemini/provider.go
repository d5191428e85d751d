package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mahmoud-fouad2/chatdesk/internal/config"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder"
	"google.golang.org/api/option"
)

// Provider implements responder.Provider for Gemini. It also serves as the
// knowledge embedder since the same SDK exposes both surfaces.
type Provider struct {
	apiKey         string
	model          string
	embeddingModel string
}

// NewProvider creates a new Gemini provider
func NewProvider(cfg config.GeminiConfig) *Provider {
	return &Provider{
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
	}
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return "gemini-2.5-flash"
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Generate produces an answer for the visitor's message
func (p *Provider) Generate(ctx context.Context, req responder.Request, model string) (*responder.Response, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	if model == "" {
		model = p.DefaultModel()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	generativeModel := client.GenerativeModel(model)
	var temperature float32 = 0.3
	generativeModel.Temperature = &temperature
	generativeModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(responder.SystemInstruction)},
	}

	prompt := responder.BuildPrompt(req)

	start := time.Now()
	resp, err := generativeModel.GenerateContent(ctx, genai.Text(prompt))
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var output string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			output += string(text)
		}
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &responder.Response{
		Text:       output,
		Model:      model,
		TokensUsed: tokens,
		LatencyMs:  latency,
	}, nil
}

// Embed computes an embedding for the given text, implementing
// knowledge.Embedder.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if !p.IsConfigured() {
		return nil, fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := p.embeddingModel
	if model == "" {
		model = "text-embedding-004"
	}

	em := client.EmbeddingModel(model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding error: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding from gemini")
	}

	return res.Embedding.Values, nil
}
