package corpus

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"

	"github.com/chris00234/web-crawler/internal/model"
)

// Fetch defaults.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 5 * 1024 * 1024
	DefaultUserAgent   = "webcrawler/1.0 (+https://github.com/chris00234/web-crawler)"

	// maxRedirects caps how many redirects one fetch follows.
	maxRedirects = 10
)

// HTTPCorpus fetches pages over HTTP.
type HTTPCorpus struct {
	client      *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
	userAgent   string
	maxBodySize int64
	timeout     time.Duration
	proxyURL    string

	// cacheDir, when set, receives a copy of every 200 response.
	cacheDir string
	cache    *FileCorpus
}

// HTTPOption configures an HTTPCorpus.
type HTTPOption func(*HTTPCorpus)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(c *HTTPCorpus) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPCorpus) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize limits how many decoded bytes are read per response.
func WithMaxBodySize(n int64) HTTPOption {
	return func(c *HTTPCorpus) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithRate limits fetches to perSecond requests per second across all
// goroutines. Zero or less means unlimited.
func WithRate(perSecond float64) HTTPOption {
	return func(c *HTTPCorpus) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithProxy routes requests through a proxy.
// socks5:// and socks5h:// URLs are dialed with a SOCKS5 dialer;
// http:// and https:// URLs are used as HTTP proxies.
func WithProxy(proxyURL string) HTTPOption {
	return func(c *HTTPCorpus) {
		c.proxyURL = strings.TrimSpace(proxyURL)
	}
}

// WithCacheDir stores every successful page under dir for offline replay.
func WithCacheDir(dir string) HTTPOption {
	return func(c *HTTPCorpus) {
		c.cacheDir = dir
	}
}

// WithHTTPClient replaces the HTTP client. Timeout and proxy options are
// ignored when it is given.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(c *HTTPCorpus) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(c *HTTPCorpus) {
		c.logger = logger
	}
}

// NewHTTPCorpus creates an HTTPCorpus.
// It fails when the proxy URL is unusable or the cache directory cannot
// be created.
func NewHTTPCorpus(opts ...HTTPOption) (*HTTPCorpus, error) {
	c := &HTTPCorpus{
		limiter:     rate.NewLimiter(rate.Inf, 1),
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.cacheDir != "" {
		if err := os.MkdirAll(c.cacheDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		cache, err := NewFileCorpus(c.cacheDir)
		if err != nil {
			return nil, err
		}
		c.cache = cache
	}

	if c.client == nil {
		transport, err := newTransport(c.proxyURL)
		if err != nil {
			return nil, err
		}
		c.client = &http.Client{
			Transport: transport,
			Timeout:   c.timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	return c, nil
}

// newTransport builds the HTTP transport, wiring in the proxy if any.
func newTransport(proxyURL string) (*http.Transport, error) {
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
		// Encodings are negotiated and decoded in readBody.
		DisableCompression: true,
	}
	if proxyURL == "" {
		return transport, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, proxyURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidProxy, err)
		}
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}
	return transport, nil
}

// FetchURL downloads rawURL.
//
// Any HTTP status is a successful fetch; the status is reported in the
// result. Transport failures, oversized bodies and cancellation return an
// error. WasRedirected is set when the final request URL differs from
// rawURL.
func (c *HTTPCorpus) FetchURL(ctx context.Context, rawURL string) (*model.FetchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	body, err := c.readBody(resp)
	if err != nil {
		return nil, err
	}

	result := &model.FetchResult{
		RequestedURL: rawURL,
		Content:      body,
		Size:         int64(len(body)),
		HTTPStatus:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
	}
	if resp.Request != nil && resp.Request.URL != nil {
		if final := resp.Request.URL.String(); final != rawURL {
			result.FinalURL = final
			result.WasRedirected = true
		}
	}

	if c.cache != nil && resp.StatusCode == http.StatusOK {
		if err := c.cache.Store(result); err != nil {
			c.logger.Warn("failed to cache page", "url", rawURL, "error", err)
		}
	}

	return result, nil
}

// HasStorageFor returns the storage name for any http or https URL with a
// host.
func (c *HTTPCorpus) HasStorageFor(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	return FileName(rawURL), true
}

// readBody decodes and reads the response body up to the size limit.
func (c *HTTPCorpus) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	closers := []io.Closer{resp.Body}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("failed to decode gzip body: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl, err := newDeflateReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("failed to decode deflate body: %w", err)
		}
		reader = fl
		closers = append(closers, fl)
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(reader, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w of %d bytes", ErrBodyTooLarge, c.maxBodySize)
	}
	return body, nil
}

// newDeflateReader decodes a deflate body. The content coding is zlib
// wrapped (RFC 9110); a body without a zlib header is read as raw deflate.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(header) == 2 && isZlibHeader(header[0], header[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// isZlibHeader reports whether cmf and flg start a zlib stream: deflate
// compression with a window of at most 32 KiB and a valid check value.
func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
