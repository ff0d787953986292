package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personalizer/internal/engine"
	"personalizer/internal/handler"
)

type Server struct {
	router *gin.Engine
	engine *engine.Engine
	logger *zap.Logger
}

func NewServer(eng *engine.Engine, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		engine: eng,
		logger: logger,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	personalizationHandler := handler.NewPersonalizationHandler(s.engine, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := s.router.Group("/api/personalization")
	{
		api.POST("/style", personalizationHandler.GetStyleDirective)
		api.POST("/language", personalizationHandler.GetLanguageDirective)
		api.POST("/captions/finalized", personalizationHandler.RecordFinalizedCaption)
		api.POST("/feedback", personalizationHandler.RecordFeedback)
		api.PUT("/voice", personalizationHandler.UpsertVoiceProfile)
		api.POST("/voice/refine", personalizationHandler.RefineVoice)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("port", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
