package wikiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wikicull/wikicull/internal/interfaces"
	"github.com/wikicull/wikicull/internal/model"
)

// defaultUserAgent is used when no user agent is configured.
const defaultUserAgent = "wikicull (https://github.com/wikicull/wikicull)"

// net/http backed implementation of WikiClient.
type NetHTTPClient struct {
	client    *http.Client
	userAgent string
	logger    interfaces.Logger
}

// NewNetHTTPClient builds the default transport. httpClient may be nil, in
// which case a client with the configured timeout is constructed. logger
// may be nil.
func NewNetHTTPClient(cfg Config, logger interfaces.Logger, httpClient *http.Client) (*NetHTTPClient, error) {
	if httpClient == nil {
		timeout := 30 * time.Second
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	if logger != nil {
		logger = logger.With(interfaces.Field{Key: "backend", Value: "nethttp"})
		logger.Info("created nethttp wikiclient",
			interfaces.Field{Key: "timeout", Value: httpClient.Timeout.String()})
	}

	return &NetHTTPClient{
		client:    httpClient,
		userAgent: ua,
		logger:    logger,
	}, nil
}

// Do implements the generic request execution using net/http.
func (c *NetHTTPClient) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	if c.logger != nil {
		c.logger.Debug("sending http request",
			interfaces.Field{Key: "method", Value: method},
			interfaces.Field{Key: "url", Value: req.URL})
	}

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Headers != nil {
		for k, vs := range req.Headers {
			for _, v := range vs {
				httpReq.Header.Add(k, v)
			}
		}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("http request failed",
				interfaces.Field{Key: "url", Value: req.URL},
				interfaces.Field{Key: "error", Value: err.Error()})
		}
		return nil, fmt.Errorf("http do: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &model.Response{
		Request:    req,
		Body:       body,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests.
func (c *NetHTTPClient) Get(ctx context.Context, url string) (*model.Response, error) {
	return c.Do(ctx, &model.Request{Method: http.MethodGet, URL: url})
}

func (c *NetHTTPClient) Close() error {
	if c.logger != nil {
		c.logger.Info("closing nethttp wikiclient")
	}
	return nil
}
