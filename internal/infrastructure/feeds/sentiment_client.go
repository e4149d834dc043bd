// Package feeds holds the clients for third-party read-only market
// feeds.
package feeds

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// sentimentClientImpl implements port.SentimentProvider against an
// alternative.me-style Fear & Greed endpoint.
type sentimentClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSentimentClient creates a new sentiment-feed client.
func NewSentimentClient(baseURL string, timeout time.Duration, logger *zap.Logger) port.SentimentProvider {
	return &sentimentClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("SentimentClient"),
	}
}

// fngResponse is the feed's wire shape; the value arrives as a string.
type fngResponse struct {
	Data []struct {
		Value               string `json:"value"`
		ValueClassification string `json:"value_classification"`
	} `json:"data"`
}

// FetchIndex polls the feed once and returns the newest reading.
func (c *sentimentClientImpl) FetchIndex(ctx context.Context) (entity.SentimentIndex, error) {
	requestURL := c.baseURL + "/fng/"

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Sentiment feed request failed", zap.String("url", requestURL), zap.Error(err))
			return entity.SentimentIndex{}, fmt.Errorf("sentiment feed request to %s failed: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Sentiment feed request failed", zap.String("url", requestURL), zap.Error(err))
			return entity.SentimentIndex{}, fmt.Errorf("sentiment feed request to %s failed: %w", requestURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Sentiment feed request rejected",
			zap.String("url", requestURL),
			zap.Int("status", resp.StatusCode()))
		return entity.SentimentIndex{}, fmt.Errorf("sentiment feed request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var payload fngResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return entity.SentimentIndex{}, fmt.Errorf("failed to unmarshal sentiment feed response: %w", err)
	}
	if len(payload.Data) == 0 {
		return entity.SentimentIndex{}, fmt.Errorf("sentiment feed returned no readings")
	}

	value, err := strconv.Atoi(payload.Data[0].Value)
	if err != nil {
		return entity.SentimentIndex{}, fmt.Errorf("sentiment feed returned non-numeric value %q: %w", payload.Data[0].Value, err)
	}

	return entity.SentimentIndex{
		Value:          value,
		Classification: payload.Data[0].ValueClassification,
	}, nil
}
