// Package notify delivers best-effort events to a tenant's webhook. Emission
// is fire-and-forget: a failed delivery is logged and never affects the
// response the visitor sees.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event names emitted by the message pipeline
const (
	EventHandoverRequested = "handover.requested"
	EventMessageReceived   = "message.received"
	EventLeadCollected     = "lead.collected"
)

// Emitter sends events to an external notification collaborator
type Emitter interface {
	Emit(tenantID, conversationID uuid.UUID, event string, payload map[string]any)
}

// WebhookEmitter posts events to per-tenant webhook URLs
type WebhookEmitter struct {
	client  *http.Client
	urlFunc func(tenantID uuid.UUID) string
}

// NewWebhookEmitter creates a webhook emitter. urlFunc resolves the target
// URL for a tenant; an empty URL drops the event.
func NewWebhookEmitter(timeout time.Duration, urlFunc func(tenantID uuid.UUID) string) *WebhookEmitter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookEmitter{
		client:  &http.Client{Timeout: timeout},
		urlFunc: urlFunc,
	}
}

// Emit delivers one event in the background. It returns immediately.
func (e *WebhookEmitter) Emit(tenantID, conversationID uuid.UUID, event string, payload map[string]any) {
	url := e.urlFunc(tenantID)
	if url == "" {
		return
	}

	go e.deliver(url, tenantID, conversationID, event, payload)
}

func (e *WebhookEmitter) deliver(url string, tenantID, conversationID uuid.UUID, event string, payload map[string]any) {
	body, err := json.Marshal(map[string]any{
		"event":           event,
		"tenant_id":       tenantID,
		"conversation_id": conversationID,
		"payload":         payload,
		"emitted_at":      time.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("failed to marshal notification")
		return
	}

	// Detached context: the originating request may already be done.
	ctx, cancel := context.WithTimeout(context.Background(), e.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("event", event).Msg("failed to build notification request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("event", event).Str("tenant_id", tenantID.String()).Msg("notification delivery failed")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Str("event", event).Msg("notification endpoint rejected event")
	}
}

// NopEmitter drops every event; used when no webhook is configured
type NopEmitter struct{}

func (NopEmitter) Emit(uuid.UUID, uuid.UUID, string, map[string]any) {}
