package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
)

const (
	// DefaultBaseURL is the Google Books API root
	DefaultBaseURL = "https://www.googleapis.com/books/v1"
	// DefaultTimeout applies to both connecting and waiting for a response
	DefaultTimeout   = 15 * time.Second
	defaultUserAgent = "bookfinder"
	maxBodyBytes     = 8 << 20
)

//go:embed volumes.schema.json
var volumesSchemaJSON []byte

var volumesSchema = mustLoadSchema(volumesSchemaJSON)

func mustLoadSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid embedded schema: %v", err))
	}
	return schema
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL        string
	APIKey         string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string

	// HTTPClient replaces the client built from the timeouts above
	HTTPClient *http.Client
	Metrics    *Metrics
	Logger     *logrus.Entry
}

// Client searches the Google Books volumes endpoint
type Client struct {
	baseURL   *url.URL
	apiKey    string
	userAgent string
	http      *http.Client
	metrics   *Metrics
	log       *logrus.Entry
}

// Ensure Client implements Searcher at compile time.
var _ Searcher = (*Client)(nil)

// NewClient creates a new catalog client
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must include scheme and host", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(opts.ConnectTimeout, opts.ReadTimeout)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Client{
		baseURL:   base,
		apiKey:    opts.APIKey,
		userAgent: userAgent,
		http:      httpClient,
		metrics:   opts.Metrics,
		log:       log.WithField("component", "catalog"),
	}, nil
}

func newHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultTimeout
	}
	if readTimeout <= 0 {
		readTimeout = DefaultTimeout
	}
	dialer := &net.Dialer{Timeout: connectTimeout}
	dial := func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		return &deadlineConn{Conn: conn, readTimeout: readTimeout}, nil
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dial,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       30 * time.Second,
		},
	}
}

// deadlineConn applies readTimeout to every socket read, body reads included.
type deadlineConn struct {
	net.Conn
	readTimeout time.Duration
}

func (c *deadlineConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

// Search performs one GET /volumes?q=<query> request
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	start := time.Now()
	books, err := c.search(ctx, query)
	elapsed := time.Since(start)
	c.metrics.observe(elapsed, len(books), err)

	entry := c.log.WithFields(logrus.Fields{
		"query":    query,
		"duration": elapsed,
	})
	if err != nil {
		entry.WithField("error_kind", ErrorKind(err)).Debugf("search failed: %v", err)
		return nil, err
	}
	entry.WithField("books", len(books)).Debug("search completed")

	return &SearchResult{Query: query, Books: books}, nil
}

func (c *Client) search(ctx context.Context, query string) ([]Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.volumesURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "search", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Op: "read", Err: err}
	}

	return decodeVolumes(body)
}

func (c *Client) volumesURL(query string) string {
	values := url.Values{}
	values.Set("q", query)
	if c.apiKey != "" {
		values.Set("key", c.apiKey)
	}
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/volumes"
	u.RawQuery = values.Encode()
	return u.String()
}

// decodeVolumes validates body against the volumes schema and maps it to books.
// A missing or null items field yields an empty, non-nil slice.
func decodeVolumes(body []byte) ([]Book, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("empty body")}
	}

	result, err := volumesSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, &ParseError{Err: fmt.Errorf("unexpected shape: %s", strings.Join(msgs, "; "))}
	}

	var payload volumesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Err: err}
	}

	books := make([]Book, 0, len(payload.Items))
	for _, item := range payload.Items {
		books = append(books, item.toBook())
	}
	return books, nil
}
