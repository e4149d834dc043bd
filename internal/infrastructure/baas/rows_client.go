package baas

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
)

const positionsCollection = "positions"

// rowsClientImpl implements port.PositionStore against the BaaS row
// surface (PostgREST-style endpoints under /rest/v1). Calls are
// rate-limited client-side so a refresh storm never hammers the store.
type rowsClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	anonKey string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewRowsClient creates a new row-store client. ratePerSec/burst bound
// the outbound request rate.
func NewRowsClient(baseURL, anonKey string, timeout time.Duration, ratePerSec, burst int, logger *zap.Logger) port.PositionStore {
	return &rowsClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
		logger:  logger.Named("RowsClient"),
	}
}

// SelectAll returns every row of the positions collection.
func (c *rowsClientImpl) SelectAll(ctx context.Context) ([]entity.PositionRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	requestURL := fmt.Sprintf("%s/rest/v1/%s?select=*", c.baseURL, positionsCollection)
	c.logger.Debug("Selecting all position rows", zap.String("url", requestURL))

	body, err := c.do(ctx, fasthttp.MethodGet, requestURL)
	if err != nil {
		return nil, err
	}

	var rows []entity.PositionRow
	if err := json.Unmarshal(body, &rows); err != nil {
		c.logger.Error("Failed to unmarshal position rows", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal position rows: %w", err)
	}

	c.logger.Debug("Selected position rows", zap.Int("rowCount", len(rows)))
	return rows, nil
}

// DeleteByID removes one row by its id.
func (c *rowsClientImpl) DeleteByID(ctx context.Context, id string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	requestURL := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", c.baseURL, positionsCollection, url.QueryEscape(id))
	c.logger.Debug("Deleting position row", zap.String("id", id))

	if _, err := c.do(ctx, fasthttp.MethodDelete, requestURL); err != nil {
		return err
	}
	return nil
}

func (c *rowsClientImpl) do(ctx context.Context, method, requestURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Prefer", "return=minimal")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Row-store request failed", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("row-store request to %s failed: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Row-store request failed", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("row-store request to %s failed: %w", requestURL, err)
		}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		var ep errorPayload
		_ = json.Unmarshal(resp.Body(), &ep)
		msg := ep.text()
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode())
		}
		c.logger.Error("Row-store request rejected",
			zap.String("url", requestURL),
			zap.Int("status", resp.StatusCode()),
			zap.String("providerMessage", msg))
		return nil, &ProviderError{Status: resp.StatusCode(), Message: msg}
	}

	// Copy: the response buffer is released with resp.
	return append([]byte(nil), resp.Body()...), nil
}
