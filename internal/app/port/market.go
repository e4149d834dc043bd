package port

import (
	"context"

	"portfolio_tracker/internal/domain/entity"
)

// SentimentProvider is the read-only market-sentiment feed.
type SentimentProvider interface {
	FetchIndex(ctx context.Context) (entity.SentimentIndex, error)
}

// MarketService serves the sidebar widget values, caching feed reads for
// the session TTL.
type MarketService interface {
	Sentiment(ctx context.Context) (entity.SentimentIndex, error)
	Gas() entity.GasPrice
}
