package baas

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"portfolio_tracker/internal/app/port"
)

// storageClientImpl implements port.BlobStore against the BaaS object
// surface (/storage/v1). It only ever touches one bucket.
type storageClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	anonKey string
	bucket  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewStorageClient creates a blob-store client bound to one bucket.
func NewStorageClient(baseURL, anonKey, bucket string, timeout time.Duration, logger *zap.Logger) port.BlobStore {
	return &storageClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		bucket:  bucket,
		timeout: timeout,
		logger:  logger.Named("StorageClient"),
	}
}

// Upload stores the blob under the given object name (upserting) and
// returns its public URL.
func (c *storageClientImpl) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	requestURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, name)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(contentType)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("x-upsert", "true")
	req.SetBody(data)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return "", fmt.Errorf("blob upload to %s failed: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return "", fmt.Errorf("blob upload to %s failed: %w", requestURL, err)
		}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		var ep errorPayload
		_ = json.Unmarshal(resp.Body(), &ep)
		msg := ep.text()
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode())
		}
		c.logger.Error("Blob upload rejected",
			zap.String("object", name),
			zap.Int("status", resp.StatusCode()),
			zap.String("providerMessage", msg))
		return "", &ProviderError{Status: resp.StatusCode(), Message: msg}
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, name)
	c.logger.Info("Blob uploaded", zap.String("object", name), zap.Int("bytes", len(data)))
	return publicURL, nil
}
