package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodgraph/backend/internal/agent"
	"moodgraph/backend/internal/metrics"
	"moodgraph/backend/internal/state"
	apperrors "moodgraph/backend/pkg/errors"
)

const requestIDHeader = "X-Request-ID"

type chatRequest struct {
	Message string           `json:"message" binding:"required"`
	History state.Transcript `json:"history" binding:"omitempty,dive"`
}

type closeRequest struct {
	Date     string           `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Messages state.Transcript `json:"messages" binding:"dive"`
}

// newRouter builds the HTTP surface over the orchestrator
func newRouter(orch *agent.Orchestrator, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if h := metrics.Handler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	// API routes
	api := router.Group("/api/users/:userID")
	{
		// Companion reply to one message
		api.POST("/chat", func(c *gin.Context) {
			var req chatRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			result := orch.Reply(c.Request.Context(), c.Param("userID"), req.History, req.Message)
			c.JSON(http.StatusOK, result)
		})

		// End-of-day closure: extract and persist the transcript
		api.POST("/conversations/close", func(c *gin.Context) {
			var req closeRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if req.Date == "" {
				req.Date = time.Now().Format("2006-01-02")
			}

			result := orch.CloseConversation(c.Request.Context(), c.Param("userID"), req.Date, req.Messages)
			c.JSON(http.StatusOK, result)
		})

		// Renderable graph
		api.GET("/graph", func(c *gin.Context) {
			g, err := orch.Graph(c.Request.Context(), c.Param("userID"))
			if err != nil {
				writeError(c, log, "Failed to assemble graph", err)
				return
			}
			c.JSON(http.StatusOK, g)
		})

		// Context digest for a query
		api.GET("/context", func(c *gin.Context) {
			digest, err := orch.RelevantContext(c.Request.Context(), c.Param("userID"), c.Query("q"))
			if err != nil {
				writeError(c, log, "Failed to retrieve context", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"context": digest})
		})

		// Delete one event and its relationships
		api.DELETE("/events/:eventID", func(c *gin.Context) {
			eventID, err := strconv.ParseUint(c.Param("eventID"), 10, 64)
			if err != nil || eventID == 0 {
				writeError(c, log, "Invalid event id", apperrors.NewValidationFailed("eventID", "must be a positive integer"))
				return
			}

			removed, err := orch.DeleteEvent(c.Request.Context(), c.Param("userID"), uint(eventID))
			if err != nil {
				writeError(c, log, "Failed to delete event", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"deleted": true, "relationshipsDeleted": removed})
		})

		// Clear the whole journal of the user
		api.DELETE("/graph", func(c *gin.Context) {
			removed, err := orch.ClearAll(c.Request.Context(), c.Param("userID"))
			if err != nil {
				writeError(c, log, "Failed to clear graph", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"deleted": removed})
		})
	}

	return router
}

// writeError maps error categories to status codes
func writeError(c *gin.Context, log *zap.Logger, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeValidation):
		status = http.StatusBadRequest
	case apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound):
		status = http.StatusNotFound
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		status = http.StatusGatewayTimeout
	}

	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.String("request_id", c.GetString(requestIDHeader)), zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requestID tags each request with an id, reusing the caller's when present
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDHeader)),
		)
	}
}
