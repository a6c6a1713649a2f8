package agent

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIServer exposes the agent's message protocol over HTTP.
type APIServer struct {
	agent  *Agent
	logger *zap.Logger
}

// NewAPIServer creates a new API server for the agent. A nil logger disables
// request logging.
func NewAPIServer(agent *Agent, logger *zap.Logger) *APIServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIServer{
		agent:  agent,
		logger: logger,
	}
}

// SetupRouter configures the Gin router with the agent routes.
func (s *APIServer) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	// Add CORS middleware so a script running inside the page can post
	router.Use(func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type")

		if ctx.Request.Method == "OPTIONS" {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}

		ctx.Next()
	})

	api := router.Group("/api/v1")
	api.POST("/message", s.HandleMessage)
	api.GET("/tab", s.HandleTab)
	api.GET("/snapshot", s.HandleSnapshot)
	api.GET("/health", s.HandleHealth)

	return router
}

// TabResponse is returned by GET /api/v1/tab.
type TabResponse struct {
	URL string `json:"url"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// HandleMessage handles POST /api/v1/message. Protocol-level failures are
// answered with 200 and success=false; only unreadable requests get 400.
func (s *APIServer) HandleMessage(ctx *gin.Context) {
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	resp := s.agent.Handle(ctx.Request.Context(), req)
	ctx.JSON(http.StatusOK, resp)
}

// HandleTab handles GET /api/v1/tab.
func (s *APIServer) HandleTab(ctx *gin.Context) {
	address, err := s.agent.Address(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to read page address"))
		return
	}
	ctx.JSON(http.StatusOK, TabResponse{URL: address})
}

// HandleSnapshot handles GET /api/v1/snapshot. It returns the most recent
// scan without touching the page.
func (s *APIServer) HandleSnapshot(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.agent.Last())
}

// HandleHealth handles GET /api/v1/health.
func (s *APIServer) HandleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs each request once it has been served.
func (s *APIServer) requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
