package transport

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps a single http.Client built once from configuration. It is
// injected into every unit of work; there is no ambient/global client.
type Client struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	maxBodyBytes int64
}

// NewClient builds the shared HTTP client. proxyURL may be empty; rateLimit
// is requests per second (0 = unlimited).
func NewClient(timeout time.Duration, proxyURL string, rateLimit int, maxBodyMB int) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   50,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
		}
		transport.Proxy = http.ProxyURL(parsed)
	}

	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter:      limiter,
		maxBodyBytes: int64(maxBodyMB) * 1024 * 1024,
	}, nil
}

// Do issues the request and reads the full body (capped at the configured
// maximum). The response body is always closed before returning.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("rate limiter cancelled: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := c.readBody(resp)
	if err != nil {
		return nil, nil, err
	}

	return resp, body, nil
}

// readBody decompresses gzip responses itself: the scan sets Accept-Encoding
// explicitly, which disables the transport's transparent decompression.
func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(io.LimitReader(reader, c.maxBodyBytes))
}

func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}
