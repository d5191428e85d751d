package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mahmoud-fouad2/chatdesk/internal/responder"
)

// Provider implements responder.Provider for a local Ollama instance
type Provider struct {
	host         string
	defaultModel string
	client       *http.Client
}

// NewProvider creates a new Ollama provider
func NewProvider(host, defaultModel string, timeout time.Duration) responder.Provider {
	if defaultModel == "" {
		defaultModel = "llama3"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Provider{
		host:         host,
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "ollama"
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if a host is set
func (p *Provider) IsConfigured() bool {
	return p.host != ""
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
}

// Generate produces an answer for the visitor's message
func (p *Provider) Generate(ctx context.Context, req responder.Request, model string) (*responder.Response, error) {
	if model == "" {
		model = p.defaultModel
	}

	genReq := generateRequest{
		Model:  model,
		Prompt: responder.BuildPrompt(req),
		System: responder.SystemInstruction,
		Stream: false,
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &responder.Response{
		Text:       genResp.Response,
		Model:      model,
		TokensUsed: genResp.EvalCount,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}
