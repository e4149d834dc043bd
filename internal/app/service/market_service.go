package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/pkg/metrics"
)

const (
	sentimentCacheKey = "sentiment"
	gasCacheKey       = "gas"
)

// marketServiceImpl serves the sidebar widgets. Feed reads happen at
// most once per cache TTL ("once per session"); the gas value is a
// locally generated placeholder, not a real feed.
type marketServiceImpl struct {
	sentiment port.SentimentProvider
	logger    *zap.Logger
	cache     *cache.Cache
}

// NewMarketService creates a MarketService with the given feed cache TTL.
func NewMarketService(sentiment port.SentimentProvider, ttl time.Duration, logger *zap.Logger) port.MarketService {
	return &marketServiceImpl{
		sentiment: sentiment,
		logger:    logger.Named("MarketService"),
		cache:     cache.New(ttl, 10*time.Minute),
	}
}

// Sentiment returns the cached sentiment reading, polling the feed when
// the cache is cold.
func (s *marketServiceImpl) Sentiment(ctx context.Context) (entity.SentimentIndex, error) {
	if v, ok := s.cache.Get(sentimentCacheKey); ok {
		return v.(entity.SentimentIndex), nil
	}

	idx, err := s.sentiment.FetchIndex(ctx)
	if err != nil {
		metrics.FeedFetchFailures.WithLabelValues("sentiment").Inc()
		s.logger.Warn("Failed to fetch sentiment index", zap.Error(err))
		return entity.SentimentIndex{}, err
	}

	s.cache.SetDefault(sentimentCacheKey, idx)
	s.logger.Debug("Sentiment index cached",
		zap.Int("value", idx.Value),
		zap.String("classification", idx.Classification))
	return idx, nil
}

// Gas returns the placeholder gas price, generated once per TTL.
func (s *marketServiceImpl) Gas() entity.GasPrice {
	if v, ok := s.cache.Get(gasCacheKey); ok {
		return v.(entity.GasPrice)
	}

	gp := entity.GasPrice{Gwei: rand.Intn(20) + 10}
	s.cache.SetDefault(gasCacheKey, gp)
	return gp
}
