package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catalogfeed/internal/logger"

	"golang.org/x/time/rate"
)

type Options struct {
	BaseURL string
	Version string
	Timeout time.Duration
	// RPS caps outgoing requests per second across every copy of the client.
	// Zero disables pacing.
	RPS float64
}

type Client struct {
	baseURL     string
	accessToken string
	debug       bool
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *logger.Logger
}

func NewClient(opts Options, logger *logger.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if opts.Version != "" {
		base += "/" + opts.Version
	}

	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
	if opts.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return c
}

// WithCredentials returns a copy of the client that authenticates with
// accessToken and, when debug is set, logs every request and response. The
// receiver is left untouched so concurrent runs for different stores never
// share credentials.
func (c *Client) WithCredentials(accessToken string, debug bool) *Client {
	cp := *c
	cp.accessToken = accessToken
	cp.debug = debug
	return &cp
}

// ListFeeds returns every feed of the catalogue, following pagination.
func (c *Client) ListFeeds(ctx context.Context, catalogID string) ([]Feed, error) {
	q := url.Values{}
	q.Set("fields", "id,name,product_count")
	q.Set("limit", "100")
	q.Set("access_token", c.accessToken)
	next := c.endpoint(catalogID+"/product_feeds", q)

	var feeds []Feed
	for next != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		var page feedsResponse
		if _, err := c.do(req, &page); err != nil {
			return nil, err
		}
		feeds = append(feeds, page.Data...)
		next = page.Paging.Next
	}
	return feeds, nil
}

// CreateFeed creates an empty feed named name and returns its id.
func (c *Client) CreateFeed(ctx context.Context, catalogID, name string) (string, error) {
	form := url.Values{}
	form.Set("name", name)

	var resp idResponse
	if err := c.postForm(ctx, catalogID+"/product_feeds", form, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("graph API returned no feed id for catalog %s", catalogID)
	}
	return resp.ID, nil
}

// GetFeed fetches a feed. It fails while the feed is not yet readable.
func (c *Client) GetFeed(ctx context.Context, feedID string) (*Feed, error) {
	q := url.Values{}
	q.Set("fields", "id,name,product_count")
	q.Set("access_token", c.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(feedID, q), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var feed Feed
	if _, err := c.do(req, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// PushFeed uploads the CSV at path to the feed. The file is streamed into the
// multipart body, never loaded whole.
func (c *Client) PushFeed(ctx context.Context, feedID, path string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadBody(mw, c.accessToken, filepath.Base(path), f))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(feedID+"/uploads", nil), pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	raw, err := c.do(req, &result)
	if err != nil {
		pr.Close()
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

func writeUploadBody(mw *multipart.Writer, accessToken, fileName string, r io.Reader) error {
	if err := mw.WriteField("access_token", accessToken); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// DeleteProduct removes one item from the catalogue through the batch API.
func (c *Client) DeleteProduct(ctx context.Context, catalogID, retailerID string) (*BatchResult, error) {
	requests, err := json.Marshal([]batchRequest{{Method: "DELETE", RetailerID: retailerID}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch: %w", err)
	}

	form := url.Values{}
	form.Set("requests", string(requests))

	var result BatchResult
	if err := c.postForm(ctx, catalogID+"/batch", form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	form.Set("access_token", c.accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err = c.do(req, out)
	return err
}

// debugBodyLimit caps how much of a response body debug logging prints.
const debugBodyLimit = 512

func debugBody(body []byte) string {
	if len(body) <= debugBodyLimit {
		return string(body)
	}
	return string(body[:debugBodyLimit]) + "..."
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do sends req and decodes a successful JSON body into out. The raw body is
// returned alongside.
func (c *Client) do(req *http.Request, out interface{}) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}
	req.Header.Set("Accept", "application/json")

	if c.debug {
		c.logger.Debug("graph request: %s %s", req.Method, req.URL.Path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		c.logger.Debug("graph response: %d (%d bytes) %s", resp.StatusCode, len(body), debugBody(body))
	}

	if apiErr := parseError(resp.StatusCode, body); apiErr != nil {
		return nil, apiErr
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return body, nil
}

func parseError(status int, body []byte) *APIError {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	if status >= 200 && status < 300 && env.Error == nil {
		return nil
	}

	apiErr := &APIError{StatusCode: status, Body: string(body)}
	if env.Error != nil {
		apiErr.Type = env.Error.Type
		apiErr.Code = env.Error.Code
		apiErr.Subcode = env.Error.ErrorSubcode
		apiErr.Message = env.Error.Message
		apiErr.TraceID = env.Error.FBTraceID
	}
	return apiErr
}
