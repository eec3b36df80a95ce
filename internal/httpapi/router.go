package httpapi

import (
	"github.com/gin-gonic/gin"
)

// NewEngine builds the gin engine with middleware and all routes.
func NewEngine(h *Handlers, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), Logging(), CORS(allowedOrigins))

	engine.GET("/health", h.Health)

	cfg := engine.Group("/config")
	{
		cfg.GET("/model-info", h.ModelInfo)
		cfg.GET("/system-prompt", h.SystemPrompt)
		cfg.GET("/order-token", h.OrderToken)
		cfg.GET("/initial-language", h.InitialLanguage)
		cfg.GET("/ui-text", h.UIText)
		cfg.GET("/greeting", h.Greeting)
		cfg.GET("/language-instruction", h.LanguageInstruction)
	}

	engine.POST("/utils/detect-language", h.DetectLanguage)

	api := engine.Group("/api")
	{
		api.POST("/llm/generate", h.Generate)
		api.POST("/stt/transcribe", h.Transcribe)
		api.POST("/order/confirm", h.ConfirmOrder)
		api.POST("/order/change", h.ChangeOrder)
	}

	return engine
}
