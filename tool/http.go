package tool

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPToolOption configures the HTTP tool.
type HTTPToolOption func(*httpToolConfig)

type httpToolConfig struct {
	client          *http.Client
	allowedHosts    []string
	blockedHosts    []string
	maxResponseSize int64
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.client = c
	}
}

// WithAllowedHosts restricts requests to specific hosts and their subdomains.
func WithAllowedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.allowedHosts = hosts
	}
}

// WithBlockedHosts blocks requests to specific hosts and their subdomains.
func WithBlockedHosts(hosts ...string) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.blockedHosts = hosts
	}
}

// WithMaxResponseSize sets the maximum response body size. Default is 1MB.
func WithMaxResponseSize(bytes int64) HTTPToolOption {
	return func(cfg *httpToolConfig) {
		cfg.maxResponseSize = bytes
	}
}

func (c *httpToolConfig) checkHost(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	matches := func(h string) bool { return host == h || strings.HasSuffix(host, "."+h) }

	for _, blocked := range c.blockedHosts {
		if matches(blocked) {
			return fmt.Errorf("host %q is blocked", host)
		}
	}
	if len(c.allowedHosts) == 0 {
		return nil
	}
	for _, allowed := range c.allowedHosts {
		if matches(allowed) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not in allowed list", host)
}

// HTTPArgs are the arguments of the http_request tool.
type HTTPArgs struct {
	URL     string            `json:"url" desc:"URL to request" required:"true"`
	Method  string            `json:"method" desc:"HTTP method" enum:"GET,POST,PUT,DELETE,PATCH"`
	Headers map[string]string `json:"headers" desc:"Request headers"`
	Body    string            `json:"body" desc:"Request body (for POST/PUT/PATCH)"`
}

// HTTPResult is the output of the http_request tool. Non-2xx responses set
// Error so the model sees the request as failed.
type HTTPResult struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
	Truncated  bool              `json:"truncated,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// HTTPTool returns the http_request tool.
func HTTPTool(opts ...HTTPToolOption) Registration {
	cfg := &httpToolConfig{maxResponseSize: 1 << 20}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{Timeout: 30 * time.Second}
	}

	return Func("http_request", "Make an HTTP request to a URL",
		func(ctx context.Context, args HTTPArgs) (any, error) {
			if err := cfg.checkHost(args.URL); err != nil {
				return nil, err
			}

			method := strings.ToUpper(args.Method)
			if method == "" {
				method = http.MethodGet
			}

			var body io.Reader
			if args.Body != "" {
				body = bytes.NewBufferString(args.Body)
			}
			req, err := http.NewRequestWithContext(ctx, method, args.URL, body)
			if err != nil {
				return nil, err
			}
			for k, v := range args.Headers {
				req.Header.Set(k, v)
			}

			resp, err := cfg.client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(resp.Body, cfg.maxResponseSize+1))
			if err != nil {
				return nil, err
			}

			result := HTTPResult{
				StatusCode: resp.StatusCode,
				Headers:    make(map[string]string),
			}
			if int64(len(data)) > cfg.maxResponseSize {
				data = data[:cfg.maxResponseSize]
				result.Truncated = true
			}
			result.Body = string(data)
			for _, h := range []string{"Content-Type", "Content-Length", "Date"} {
				if v := resp.Header.Get(h); v != "" {
					result.Headers[h] = v
				}
			}
			if resp.StatusCode >= 400 {
				result.Error = resp.Status
			}
			return result, nil
		})
}
