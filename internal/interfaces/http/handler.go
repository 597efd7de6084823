package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/finbridge/quote-service/internal/application"
	"github.com/finbridge/quote-service/internal/domain"
	"github.com/gin-gonic/gin"
)

// QuoteResolver defines the interface for quote resolution operations
type QuoteResolver interface {
	ResolvePrice(ctx context.Context, ticker, market string) *domain.PriceRecord
	ResolveTicker(ctx context.Context, isin string) *domain.TickerRecord
	ResolvePrices(ctx context.Context, requests []application.PriceLookup) ([]domain.PriceRecord, error)
	ResolveTickers(ctx context.Context, isins []string) ([]*domain.TickerRecord, error)
}

type Handler struct {
	quoteResolver QuoteResolver
}

func NewHandler(quoteResolver QuoteResolver) *Handler {
	return &Handler{
		quoteResolver: quoteResolver,
	}
}

type StockQuery struct {
	Ticker string `form:"ticker" binding:"required"`
	Market string `form:"market" binding:"required"`
}

type StocksRequest struct {
	Stocks []application.PriceLookup `json:"stocks" binding:"required"`
}

type TickersRequest struct {
	ISINs []string `json:"isins" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// GetStock resolves one price lookup. An unknown instrument or a failed
// upstream call both serialize as a JSON null body, mirroring a nullable
// query field.
func (h *Handler) GetStock(c *gin.Context) {
	var query StockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid stock query", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	record := h.quoteResolver.ResolvePrice(c.Request.Context(), query.Ticker, query.Market)
	c.JSON(http.StatusOK, record)
}

func (h *Handler) GetTicker(c *gin.Context) {
	isin := c.Param("isin")

	record := h.quoteResolver.ResolveTicker(c.Request.Context(), isin)
	c.JSON(http.StatusOK, record)
}

func (h *Handler) GetStocks(c *gin.Context) {
	var req StocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	records, err := h.quoteResolver.ResolvePrices(c.Request.Context(), req.Stocks)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to resolve price batch", "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetTickers(c *gin.Context) {
	var req TickersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	records, err := h.quoteResolver.ResolveTickers(c.Request.Context(), req.ISINs)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to resolve ticker batch", "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
