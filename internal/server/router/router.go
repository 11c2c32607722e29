package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/landregistry/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. accounts may
// be nil when settlement runs against an external gateway.
func New(ledger *handlers.LedgerHandler, accounts *handlers.AccountHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	parcels := r.Group("/parcels")
	parcels.POST("", ledger.Register)
	parcels.GET("", ledger.List)
	parcels.GET("/:id", ledger.Verify)
	parcels.POST("/:id/transfer", ledger.Transfer)
	parcels.POST("/:id/sell", ledger.Sell)

	if accounts != nil {
		r.POST("/accounts/:id/deposits", accounts.Deposit)
		r.GET("/accounts/:id", accounts.Balance)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("caller", c.GetHeader(handlers.CallerHeader)))
	}
}
