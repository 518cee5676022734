package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"anoa.com/eduainexus/internal/agent"
	"anoa.com/eduainexus/internal/ai"
	"anoa.com/eduainexus/internal/config"
	"anoa.com/eduainexus/internal/middleware"
	"anoa.com/eduainexus/internal/typewriter"
	"anoa.com/eduainexus/pkg/logger"
	"anoa.com/eduainexus/pkg/ratelimiter"
	"anoa.com/eduainexus/pkg/response"
	"anoa.com/eduainexus/pkg/storage"
	"anoa.com/eduainexus/pkg/token"

	assistantHttp "anoa.com/eduainexus/internal/modules/assistant/delivery/http"
	assistantService "anoa.com/eduainexus/internal/modules/assistant/service"

	conversationHttp "anoa.com/eduainexus/internal/modules/conversation/delivery/http"
	conversationService "anoa.com/eduainexus/internal/modules/conversation/service"

	educationHttp "anoa.com/eduainexus/internal/modules/education/delivery/http"
	educationService "anoa.com/eduainexus/internal/modules/education/service"

	executionHttp "anoa.com/eduainexus/internal/modules/execution/delivery/http"
	executionService "anoa.com/eduainexus/internal/modules/execution/service"

	promptHttp "anoa.com/eduainexus/internal/modules/prompt/delivery/http"
	promptRepo "anoa.com/eduainexus/internal/modules/prompt/repository"
	promptService "anoa.com/eduainexus/internal/modules/prompt/service"

	renderHttp "anoa.com/eduainexus/internal/modules/render/delivery/http"

	scannerHttp "anoa.com/eduainexus/internal/modules/scanner/delivery/http"
	scannerService "anoa.com/eduainexus/internal/modules/scanner/service"

	searchService "anoa.com/eduainexus/internal/modules/search/service"

	studyHttp "anoa.com/eduainexus/internal/modules/study/delivery/http"
	studyService "anoa.com/eduainexus/internal/modules/study/service"

	userHttp "anoa.com/eduainexus/internal/modules/user/delivery/http"
	userRepo "anoa.com/eduainexus/internal/modules/user/repository"
	userService "anoa.com/eduainexus/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the external clients the server is built on. Redis, Meili, Images and
// Provider may be nil; the features behind them then degrade.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Meili    meilisearch.ServiceManager
	Images   storage.ImageStorage
	Provider ai.Provider
}

type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	scheduler  *agent.Scheduler
	reindex    bool
	log        *logger.Logger
}

func NewServer(cfg *config.Config, log *logger.Logger, deps Deps) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	response.SetLogger(log)

	// Registry
	userRepository := userRepo.NewUserRepository(deps.DB)
	promptRepository := promptRepo.NewPromptRepository(deps.DB)

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL, deps.Redis)
	limiter := ratelimiter.New(deps.Redis, cfg.RateLimitAI, 0)

	models := ai.Models{
		Fast:           cfg.GeminiFastModel,
		Thinking:       cfg.GeminiThinkingModel,
		Structured:     cfg.GeminiAnalysisModel,
		ThinkingBudget: cfg.GeminiThinkingBudget,
	}
	gateway := ai.NewGateway(deps.Provider, ai.NewTable(models), log)

	var search searchService.SearchService
	if deps.Meili != nil {
		search = searchService.NewMeiliSearchService(deps.Meili, log)
	}

	// User Module
	var identity userService.IdentityProvider
	if cfg.IdentityConfigured() {
		identity = userService.NewGoogleIdentity(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}
	authSvc := userService.NewAuthService(userRepository, identity, tokens, cfg.IsTeacherEmail, log)
	authHandler := userHttp.NewAuthHandler(authSvc, cfg.FrontendURL)

	// Prompt Module
	promptSvc := promptService.NewPromptService(
		promptRepository, userRepository, gateway, search, deps.Images,
		cfg.CloudinaryUploadFolder, limiter, log,
	)
	promptHandler := promptHttp.NewPromptHandler(promptSvc)

	// Conversation Module
	registry := conversationService.NewRegistry()
	conversationSvc := conversationService.NewConversationService(gateway, registry, limiter, log)
	conversationHandler := conversationHttp.NewConversationHandler(conversationSvc)

	executionSvc := executionService.NewExecutionService(conversationSvc, limiter)
	executionHandler := executionHttp.NewExecutionHandler(executionSvc)

	// Study Module
	studySvc := studyService.NewStudyService(gateway, conversationSvc, limiter, log)
	studyHandler := studyHttp.NewStudyHandler(studySvc, cfg.MaxDocumentBytes)

	// Scanner Module
	scannerSvc := scannerService.NewScannerService(gateway, deps.Images, cfg.CloudinaryUploadFolder, limiter, log)
	scannerHandler := scannerHttp.NewScannerHandler(scannerSvc, cfg.MaxImageBytes)

	assistantSvc := assistantService.NewAssistantService(gateway, limiter, log)
	assistantHandler := assistantHttp.NewAssistantHandler(assistantSvc, cfg.AllowedOrigins, log)

	educationHandler := educationHttp.NewEducationHandler(educationService.NewEducationService())
	renderHandler := renderHttp.NewRenderHandler(typewriter.NewRenderer(), log)

	// Background agents
	scheduler := agent.NewScheduler(log)
	if err := scheduler.RegisterAgent(conversationService.NewSweepAgent(registry, cfg.ConversationIdleTTL, cfg.SweepSchedule, log)); err != nil {
		return nil, err
	}
	if search != nil {
		if err := scheduler.RegisterAgent(searchService.NewReindexAgent(search, promptRepository, cfg.ReindexSchedule)); err != nil {
			return nil, err
		}
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.GET("/google/login", authHandler.GoogleLogin)
		auth.GET("/google/callback", authHandler.GoogleCallback)
	}
	api.GET("/education", educationHandler.GetGuide)
	api.POST("/render", renderHandler.Render)

	// Guests see public prompts only
	library := api.Group("/prompts")
	library.Use(authMiddleware.OptionalAuth())
	{
		library.GET("", promptHandler.ListPrompts)
		library.GET("/categories", promptHandler.GetCategories)
		library.GET("/:id", promptHandler.GetPrompt)
		library.POST("/preview", promptHandler.Preview)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/profile/me", authHandler.Me)

		// Prompt routes
		protected.POST("/prompts", promptHandler.CreatePrompt)
		protected.POST("/prompts/smart", promptHandler.SmartPrompt)
		protected.PUT("/prompts/:id", promptHandler.UpdatePrompt)
		protected.DELETE("/prompts/:id", promptHandler.DeletePrompt)
		protected.POST("/prompts/:id/like", promptHandler.ToggleLike)
		protected.POST("/prompts/:id/test", promptHandler.QuickTest)
		protected.POST("/prompts/:id/illustration", promptHandler.Illustrate)

		// Execution routes
		protected.POST("/executions", executionHandler.Execute)
		protected.POST("/conversations/:id/messages", conversationHandler.SendMessage)
		protected.GET("/conversations/:id", conversationHandler.GetConversation)
		protected.DELETE("/conversations/:id", conversationHandler.DeleteConversation)

		// Study routes
		study := protected.Group("/study")
		{
			study.POST("/summary", studyHandler.Summary)
			study.POST("/flashcards", studyHandler.Flashcards)
			study.POST("/quiz", studyHandler.Quiz)
			study.POST("/related-topics", studyHandler.RelatedTopics)
			study.POST("/toolkit", studyHandler.Toolkit)
			study.POST("/extract", studyHandler.Extract)
			study.POST("/sessions", studyHandler.OpenSession)
			study.POST("/expand", studyHandler.Expand)
		}

		protected.POST("/scanner/scan", scannerHandler.Scan)
		protected.GET("/assistant/ws", assistantHandler.HandleWebSocket)
	}

	return &Server{
		engine: router,
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		scheduler: scheduler,
		reindex:   search != nil,
		log:       log,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the background agents and serves until Shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.scheduler.Start()
	if s.reindex {
		go func() {
			if err := s.scheduler.RunAgentByName(ctx, searchService.ReindexAgentName); err != nil {
				s.log.Warn("initial search reindex failed", "error", err)
			}
		}()
	}

	s.log.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP requests, then waits for running agents.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.scheduler.Stop(ctx)
	return err
}

func setupCORS(router *gin.Engine, allowedOrigins []string) {
	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// MeiliHost accepts a bare host name the way docker-compose service names are written.
func MeiliHost(host string) string {
	if host != "" && !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}
