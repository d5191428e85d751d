package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/notify"
	"github.com/mahmoud-fouad2/chatdesk/internal/repository/redis"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder"
	"github.com/mahmoud-fouad2/chatdesk/internal/sanitize"
	"github.com/rs/zerolog/log"
)

// CacheStore is the fingerprint cache consumed by the pipeline. Get returns
// nil on miss; Set is best-effort.
type CacheStore interface {
	Get(ctx context.Context, tenantID uuid.UUID, query string) *redis.CachedAnswer
	Set(ctx context.Context, tenantID uuid.UUID, query string, answer *redis.CachedAnswer)
}

// KnowledgeIndex produces ranked supporting context for a query
type KnowledgeIndex interface {
	Retrieve(ctx context.Context, tenantID uuid.UUID, query string, k int) ([]domain.KnowledgeChunk, error)
}

// ChatService orchestrates the inbound message pipeline:
// quota gate → conversation state machine → fingerprint cache →
// knowledge retrieval → responder → sanitizer → cache write → persistence.
type ChatService struct {
	tenantRepo  domain.TenantRepository
	convRepo    domain.ConversationRepository
	messageRepo domain.MessageRepository
	quotaGate   *QuotaGate
	cache       CacheStore
	retriever   KnowledgeIndex
	responders  *responder.Router
	emitter     notify.Emitter

	responderTimeout time.Duration
	historyLimit     int
	retrievalK       int
}

// NewChatService creates the pipeline service
func NewChatService(
	tenantRepo domain.TenantRepository,
	convRepo domain.ConversationRepository,
	messageRepo domain.MessageRepository,
	quotaGate *QuotaGate,
	cache CacheStore,
	retriever KnowledgeIndex,
	responders *responder.Router,
	emitter notify.Emitter,
	responderTimeout time.Duration,
	historyLimit int,
	retrievalK int,
) *ChatService {
	if responderTimeout <= 0 {
		responderTimeout = 45 * time.Second
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	if retrievalK <= 0 {
		retrievalK = 3
	}
	return &ChatService{
		tenantRepo:       tenantRepo,
		convRepo:         convRepo,
		messageRepo:      messageRepo,
		quotaGate:        quotaGate,
		cache:            cache,
		retriever:        retriever,
		responders:       responders,
		emitter:          emitter,
		responderTimeout: responderTimeout,
		historyLimit:     historyLimit,
		retrievalK:       retrievalK,
	}
}

// HandleMessage processes one inbound visitor message end to end
func (s *ChatService) HandleMessage(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	// Tenant lookup failure is fatal to the request.
	tenant, err := s.tenantRepo.GetByID(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if !tenant.Active {
		return nil, fmt.Errorf("tenant is deactivated")
	}

	// Quota is evaluated before any expensive work, against the usage as
	// it stood before this request. Deny has no side effects.
	if err := s.quotaGate.Check(tenant); err != nil {
		return nil, err
	}

	conv, err := s.resolveConversation(ctx, tenant.ID, req)
	if err != nil {
		return nil, err
	}
	dialect := tenant.WidgetConfig.Dialect

	// While a human owns the conversation the automated pipeline stays out
	// entirely. The message is still logged so the agent sees it.
	if conv.Status.WaitingForAgent() {
		s.storeUserMessage(ctx, conv, req.Message)
		return &domain.ChatResponse{
			ConversationID: conv.ID,
			Status:         "waiting_for_agent",
			Response:       WaitingForAgentMessage(dialect),
		}, nil
	}

	s.storeUserMessage(ctx, conv, req.Message)

	// Handover detection runs before anything is spent on retrieval.
	if resp, handled := s.handleHandover(ctx, conv, dialect, req.Message); handled {
		return resp, nil
	}

	// Contact-collection sub-flow.
	if resp, handled := s.handlePreChat(ctx, tenant, conv, req.Message); handled {
		return resp, nil
	}

	// Fingerprinted cache lookup.
	if cached := s.cacheGet(ctx, tenant.ID, req.Message); cached != nil {
		s.storeAssistantMessage(ctx, conv, cached.Answer, true, &domain.MessageMeta{
			Model:   cached.Model,
			Sources: cached.Sources,
		})
		s.chargeUsage(ctx, tenant.ID)
		s.emit(tenant, conv, notify.EventMessageReceived, map[string]any{"from_cache": true})

		return &domain.ChatResponse{
			Response:       cached.Answer,
			ConversationID: conv.ID,
			FromCache:      true,
			Model:          cached.Model,
			KnowledgeUsed:  len(cached.Sources) > 0,
		}, nil
	}

	// Cache miss: retrieve supporting context. A retrieval failure means
	// answering with zero context, never aborting the request.
	var chunks []domain.KnowledgeChunk
	if s.retriever != nil {
		chunks, err = s.retriever.Retrieve(ctx, tenant.ID, req.Message, s.retrievalK)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", tenant.ID.String()).Msg("knowledge retrieval failed, answering without context")
			chunks = nil
		}
	}

	knowledgeTexts := make([]string, len(chunks))
	for i, c := range chunks {
		knowledgeTexts[i] = c.Content
	}

	genResp, genErr := s.generate(ctx, tenant, conv, req.Message, knowledgeTexts)
	if genErr != nil {
		if ctx.Err() != nil {
			// The caller is gone; nothing was delivered, so nothing is
			// persisted as an assistant turn.
			return nil, genErr
		}
		log.Error().Err(genErr).Str("tenant_id", tenant.ID.String()).Msg("responder failed, substituting fallback")
		genResp = &responder.Response{Text: ""}
	}

	result := sanitize.Sanitize(genResp.Text, dialect)
	issues := sanitize.Validate(result.Text, dialect, knowledgeTexts)
	sanitize.LogIssues(conv.ID.String(), issues)

	meta := &domain.MessageMeta{
		Model:      genResp.Model,
		TokensUsed: genResp.TokensUsed,
		Sources:    result.Sources,
	}
	for _, c := range chunks {
		meta.KnowledgeIDs = append(meta.KnowledgeIDs, c.ID.String())
	}
	s.storeAssistantMessage(ctx, conv, result.Text, false, meta)

	// Substituted apologies are real assistant turns but the visitor is
	// not charged for a failed attempt, and the failure is not cached.
	if !result.Substitute {
		s.chargeUsage(ctx, tenant.ID)
		s.cacheSet(tenant.ID, req.Message, &redis.CachedAnswer{
			Answer:   result.Text,
			Model:    genResp.Model,
			Sources:  result.Sources,
			CachedAt: time.Now(),
		})
	}

	s.emit(tenant, conv, notify.EventMessageReceived, map[string]any{"from_cache": false})

	return &domain.ChatResponse{
		Response:       result.Text,
		ConversationID: conv.ID,
		FromCache:      false,
		Model:          genResp.Model,
		KnowledgeUsed:  len(chunks) > 0,
	}, nil
}

// resolveConversation finds or creates the conversation this message
// belongs to. Closed conversations are never reopened: a message aimed at
// one starts a fresh conversation for the same session.
func (s *ChatService) resolveConversation(ctx context.Context, tenantID uuid.UUID, req domain.ChatRequest) (*domain.Conversation, error) {
	if req.ConversationID != uuid.Nil {
		conv, err := s.convRepo.Get(ctx, req.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		if conv.TenantID != tenantID {
			return nil, fmt.Errorf("conversation does not belong to tenant")
		}
		if conv.Status != domain.StatusClosed {
			return conv, nil
		}
	}

	if req.SessionID != "" {
		conv, err := s.convRepo.GetOpenBySession(ctx, tenantID, req.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up session conversation: %w", err)
		}
		if conv != nil {
			return conv, nil
		}
	}

	now := time.Now()
	conv := &domain.Conversation{
		ID:        uuid.New(),
		TenantID:  tenantID,
		SessionID: req.SessionID,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return conv, nil
}

// handleHandover runs the two handover branches of the state machine.
// Returns handled=true when the turn was consumed by a scripted response.
func (s *ChatService) handleHandover(ctx context.Context, conv *domain.Conversation, dialect, message string) (*domain.ChatResponse, bool) {
	lastAssistant, err := s.messageRepo.LastAssistant(ctx, conv.ID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load last assistant turn")
		lastAssistant = nil
	}

	detailsAsked := lastAssistant != nil && lastAssistant.Meta != nil && lastAssistant.Meta.Action == domain.ActionAskDetails

	if detailsAsked && SuppliesHandoverDetails(message) {
		requestText := lastAssistant.Meta.RequestText

		won, err := s.convRepo.UpdateStatus(ctx, conv.ID, conv.Status, domain.StatusHandoverRequested)
		if err != nil {
			log.Error().Err(err).Msg("failed to transition to handover")
		}
		if won {
			// System marker carries the text of the original request so
			// the agent sees what started the handover.
			s.storeSystemMessage(ctx, conv, fmt.Sprintf("Handover requested. Details: %s", message), requestText)

			s.emitTenantConv(conv, notify.EventHandoverRequested, map[string]any{
				"details": message,
				"request": requestText,
			})
		}

		reply := HandoverCompleteMessage(dialect)
		s.storeAssistantMessage(ctx, conv, reply, false, &domain.MessageMeta{Action: domain.ActionHandoverComplete})

		return &domain.ChatResponse{
			Response:       reply,
			ConversationID: conv.ID,
			Action:         domain.ActionHandoverComplete,
		}, true
	}

	if MatchesHandoverIntent(message) {
		// No transition yet: ask for details and stay active.
		reply := AskDetailsMessage(dialect)
		s.storeAssistantMessage(ctx, conv, reply, false, &domain.MessageMeta{
			Action:      domain.ActionAskDetails,
			RequestText: message,
		})

		return &domain.ChatResponse{
			Response:       reply,
			ConversationID: conv.ID,
			Action:         domain.ActionAskDetails,
		}, true
	}

	return nil, false
}

// handlePreChat runs the contact-collection sub-flow. Only the very first
// lead-intent turn is consumed; later extraction is opportunistic and the
// turn continues to normal handling.
func (s *ChatService) handlePreChat(ctx context.Context, tenant *domain.Tenant, conv *domain.Conversation, message string) (*domain.ChatResponse, bool) {
	if !tenant.WidgetConfig.CollectContactInfo {
		return nil, false
	}

	if conv.PreChatData == nil {
		if !MatchesLeadIntent(message) {
			return nil, false
		}

		conv.PreChatData = &domain.PreChatData{}
		if err := s.convRepo.UpdatePreChatData(ctx, conv.ID, conv.PreChatData); err != nil {
			log.Warn().Err(err).Msg("failed to init pre-chat data")
		}

		reply := ContactRequestMessage(tenant.WidgetConfig.Dialect)
		s.storeAssistantMessage(ctx, conv, reply, false, &domain.MessageMeta{Action: domain.ActionContactRequest})

		return &domain.ChatResponse{
			Response:       reply,
			ConversationID: conv.ID,
			Action:         domain.ActionContactRequest,
		}, true
	}

	if !conv.PreChatData.Complete() {
		if ExtractContactInfo(conv.PreChatData, message) {
			if err := s.convRepo.UpdatePreChatData(ctx, conv.ID, conv.PreChatData); err != nil {
				log.Warn().Err(err).Msg("failed to update pre-chat data")
			}
			if conv.PreChatData.Complete() {
				s.emit(tenant, conv, notify.EventLeadCollected, map[string]any{
					"name":  *conv.PreChatData.Name,
					"phone": *conv.PreChatData.Phone,
				})
			}
		}
	}

	return nil, false
}

// generate calls the responder once with a bounded timeout. The call runs
// on a context detached from the request so a caller timeout still lets
// generation finish and warm the cache for the next identical query.
func (s *ChatService) generate(ctx context.Context, tenant *domain.Tenant, conv *domain.Conversation, message string, knowledge []string) (*responder.Response, error) {
	provider, err := s.responders.GetProvider("")
	if err != nil {
		return nil, fmt.Errorf("no responder available: %w", err)
	}

	history, err := s.messageRepo.ListByConversation(ctx, conv.ID, s.historyLimit)
	if err != nil {
		history = nil
	}

	// The current turn was persisted just before generation; drop it from
	// the history so the prompt carries it only once, as the trailing
	// visitor line.
	if n := len(history); n > 0 && history[n-1].Role == domain.RoleUser && history[n-1].Content == message {
		history = history[:n-1]
	}

	genReq := responder.Request{
		Message:   message,
		Dialect:   tenant.WidgetConfig.Dialect,
		BrandName: tenant.WidgetConfig.BrandName,
		Knowledge: knowledge,
	}
	for _, m := range history {
		if m.Role == domain.RoleSystem {
			continue
		}
		genReq.History = append(genReq.History, responder.HistoryTurn{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.responderTimeout)

	type genResult struct {
		resp *responder.Response
		err  error
	}
	done := make(chan genResult, 1)

	go func() {
		defer cancel()
		resp, err := provider.Generate(genCtx, genReq, "")
		done <- genResult{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		// Finish in the background and keep the cache warm; the caller
		// gets nothing this turn.
		go func() {
			r := <-done
			if r.err == nil && r.resp != nil {
				result := sanitize.Sanitize(r.resp.Text, tenant.WidgetConfig.Dialect)
				if !result.Substitute {
					s.cacheSet(tenant.ID, message, &redis.CachedAnswer{
						Answer:   result.Text,
						Model:    r.resp.Model,
						Sources:  result.Sources,
						CachedAt: time.Now(),
					})
				}
			}
		}()
		return nil, ctx.Err()
	}
}

func (s *ChatService) cacheGet(ctx context.Context, tenantID uuid.UUID, query string) *redis.CachedAnswer {
	if s.cache == nil {
		return nil
	}
	return s.cache.Get(ctx, tenantID, query)
}

// cacheSet writes on a fresh context so an expiring request cannot cancel
// the write.
func (s *ChatService) cacheSet(tenantID uuid.UUID, query string, answer *redis.CachedAnswer) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.cache.Set(ctx, tenantID, query, answer)
}

func (s *ChatService) chargeUsage(ctx context.Context, tenantID uuid.UUID) {
	if _, err := s.tenantRepo.IncrementUsage(ctx, tenantID); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to increment usage counter")
	}
}

func (s *ChatService) storeUserMessage(ctx context.Context, conv *domain.Conversation, content string) {
	s.storeMessage(ctx, conv, domain.RoleUser, content, false, nil)
}

func (s *ChatService) storeAssistantMessage(ctx context.Context, conv *domain.Conversation, content string, fromCache bool, meta *domain.MessageMeta) {
	s.storeMessage(ctx, conv, domain.RoleAssistant, content, fromCache, meta)
}

func (s *ChatService) storeSystemMessage(ctx context.Context, conv *domain.Conversation, content, requestText string) {
	s.storeMessage(ctx, conv, domain.RoleSystem, content, false, &domain.MessageMeta{RequestText: requestText})
}

func (s *ChatService) storeMessage(ctx context.Context, conv *domain.Conversation, role domain.MessageRole, content string, fromCache bool, meta *domain.MessageMeta) {
	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		TenantID:       conv.TenantID,
		Role:           role,
		Content:        content,
		WasFromCache:   fromCache,
		Meta:           meta,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		log.Error().Err(err).Str("role", string(role)).Msg("failed to persist message")
	}
}

func (s *ChatService) emit(tenant *domain.Tenant, conv *domain.Conversation, event string, payload map[string]any) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(tenant.ID, conv.ID, event, payload)
}

func (s *ChatService) emitTenantConv(conv *domain.Conversation, event string, payload map[string]any) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(conv.TenantID, conv.ID, event, payload)
}
