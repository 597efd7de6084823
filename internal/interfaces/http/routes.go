package http

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api/v1")
	{
		api.GET("/stock", handler.GetStock)
		api.GET("/ticker/:isin", handler.GetTicker)

		api.POST("/stocks", handler.GetStocks)
		api.POST("/tickers", handler.GetTickers)
	}

	router.GET("/ping", handler.Ping)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
