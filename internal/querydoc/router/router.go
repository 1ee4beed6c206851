// Package router registers the QA service routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/querydoc/internal/querydoc/handler"
)

// Register registers all routes on the gin engine.
func Register(engine *gin.Engine, qaHandler *handler.QAHandler) {
	engine.POST("/hackrx/run", qaHandler.Run)
	engine.GET("/ping", qaHandler.Ping)

	v1 := engine.Group("/v1")
	{
		qa := v1.Group("/qa")
		{
			qa.GET("/stats", qaHandler.Stats)
		}
	}

	logger.Info("HTTP routes registered")
}
