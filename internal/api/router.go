package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/handler"
	custommiddleware "github.com/mahmoud-fouad2/chatdesk/internal/api/middleware"
	"github.com/mahmoud-fouad2/chatdesk/internal/config"
	"github.com/mahmoud-fouad2/chatdesk/internal/knowledge"
	"github.com/mahmoud-fouad2/chatdesk/internal/notify"
	"github.com/mahmoud-fouad2/chatdesk/internal/repository/postgres"
	"github.com/mahmoud-fouad2/chatdesk/internal/repository/redis"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder/gemini"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder/ollama"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder/openai"
	"github.com/mahmoud-fouad2/chatdesk/internal/security"
	"github.com/mahmoud-fouad2/chatdesk/internal/service"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS is wide open on purpose: the widget is embedded on arbitrary
	// customer sites.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Repositories
	tenantRepo := postgres.NewTenantRepository(db)
	userRepo := postgres.NewUserRepository(db)
	conversationRepo := postgres.NewConversationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	knowledgeRepo := postgres.NewKnowledgeRepository(db)

	// Redis-backed cache and limiter
	answerCache := redis.NewAnswerCache(redisClient, cfg.Chat.AnswerCacheTTL)
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Chat.RateLimit.RequestsPerMinute,
		cfg.Chat.RateLimit.Burst,
	)

	// Responder providers
	responderRouter := responder.NewRouter(cfg.Responder.DefaultProvider)
	log.Info().Str("default", cfg.Responder.DefaultProvider).Msg("initializing responder providers")

	var embedder knowledge.Embedder
	if cfg.Responder.Gemini.APIKey != "" {
		geminiProvider := gemini.NewProvider(cfg.Responder.Gemini)
		responderRouter.RegisterProvider(geminiProvider)
		embedder = geminiProvider
	} else {
		log.Warn().Msg("Gemini API key is empty, similarity search disabled")
	}
	if cfg.Responder.OpenAI.APIKey != "" {
		responderRouter.RegisterProvider(openai.NewProvider(cfg.Responder.OpenAI.APIKey, cfg.Responder.OpenAI.Model, cfg.Responder.Timeout))
	}
	if cfg.Responder.Ollama.Host != "" {
		responderRouter.RegisterProvider(ollama.NewProvider(cfg.Responder.Ollama.Host, cfg.Responder.Ollama.DefaultModel, cfg.Responder.Timeout))
	}

	retriever := knowledge.NewRetriever(knowledgeRepo, embedder)

	// Webhook notifications resolve the target URL per tenant at send time
	// so config changes apply without restarts.
	emitter := notify.NewWebhookEmitter(cfg.Notify.Timeout, func(tenantID uuid.UUID) string {
		tenant, err := tenantRepo.GetByID(context.Background(), tenantID)
		if err != nil {
			return ""
		}
		return tenant.WidgetConfig.WebhookURL
	})

	// Services
	authService := service.NewAuthService(userRepo, tenantRepo, jwtManager, cfg.Auth.AccessTokenTTL, cfg.Chat.DefaultQuota)
	tenantService := service.NewTenantService(tenantRepo)
	conversationService := service.NewConversationService(conversationRepo, messageRepo, emitter)
	knowledgeService := service.NewKnowledgeService(knowledgeRepo, embedder, answerCache)
	chatService := service.NewChatService(
		tenantRepo,
		conversationRepo,
		messageRepo,
		service.NewQuotaGate(),
		answerCache,
		retriever,
		responderRouter,
		emitter,
		cfg.Responder.Timeout,
		cfg.Chat.HistoryLimit,
		cfg.Chat.RetrievalK,
	)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService, tenantService)
	conversationHandler := handler.NewConversationHandler(conversationService)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService)
	tenantHandler := handler.NewTenantHandler(tenantService)

	authMiddleware := custommiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := custommiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Public widget routes
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware.LimitPublic)

			r.Post("/chat/message", chatHandler.Message)
			r.Get("/chat/widget/{tenantID}", chatHandler.Widget)
		})

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Dashboard routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/auth/me", authHandler.Me)

			r.Get("/responder-providers", handler.ListProviders(responderRouter))

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", tenantHandler.Settings)
				r.Put("/widget", tenantHandler.UpdateWidget)
				r.Get("/usage", tenantHandler.Usage)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)

				r.Route("/{conversationID}", func(r chi.Router) {
					r.Get("/messages", conversationHandler.Messages)
					r.Post("/reply", conversationHandler.Reply)
					r.Post("/close", conversationHandler.Close)
				})
			})

			r.Route("/knowledge", func(r chi.Router) {
				r.Get("/", knowledgeHandler.List)
				r.Post("/", knowledgeHandler.Create)
				r.Delete("/{chunkID}", knowledgeHandler.Delete)
			})

			r.Post("/cache/invalidate", knowledgeHandler.InvalidateCache)
		})
	})

	return r
}
