package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio_tracker/internal/app/port"
)

// MarketHandler serves the sidebar widget feeds.
type MarketHandler struct {
	market port.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(market port.MarketService) *MarketHandler {
	return &MarketHandler{market: market}
}

// SentimentHandler returns the cached Fear & Greed reading.
func (h *MarketHandler) SentimentHandler(c *gin.Context) {
	index, err := h.market.Sentiment(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, index)
}

// GasHandler returns the gas-price widget value.
func (h *MarketHandler) GasHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Gas())
}
