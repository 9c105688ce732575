package jellyfin

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API definitions: https://swagger.emby.media/ & https://api.jellyfin.org/
// Docs: https://github.com/mediabrowser/emby/wiki

const (
	// defaultPageSize is the number of items requested per page when
	// walking a paginated collection.
	defaultPageSize = 200

	defaultTimeout = 60 * time.Second

	// authHeader carries the API key on every request.
	authHeader = "X-MediaBrowser-Token"
)

var (
	// ErrFetchFailed indicates a remote fetch did not complete. Callers must
	// not reconcile against a collection whose fetch failed: a failed fetch
	// is not an empty collection.
	ErrFetchFailed = errors.New("remote fetch failed")

	// ErrNoConfiguration indicates host or API key is not set.
	ErrNoConfiguration = errors.New("misconfigured client, missing host or apikey")
)

type Options struct {
	// URL of the remote server, e.g. https://jellyfin.example.com
	URL string
	// APIKey used to authenticate against the remote server.
	APIKey string
	// Do not verify the remote TLS certificate. For self-signed setups.
	InsecureSkipVerify bool
	// PageSize overrides the items-per-page of paginated fetches.
	PageSize int
	// HTTPClient overrides the http client, used by tests.
	HTTPClient *http.Client
}

// Client talks to the remote catalog server.
type Client struct {
	url        string
	apiKey     string
	pageSize   int
	httpClient *http.Client
}

func New(o *Options) (*Client, error) {
	if o.URL == "" || o.APIKey == "" {
		return nil, ErrNoConfiguration
	}
	c := &Client{
		url:        strings.TrimRight(o.URL, "/"),
		apiKey:     o.APIKey,
		pageSize:   o.PageSize,
		httpClient: o.HTTPClient,
	}
	if c.pageSize == 0 {
		c.pageSize = defaultPageSize
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: o.InsecureSkipVerify,
				},
			},
		}
	}
	return c, nil
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.url + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// post performs an authenticated POST with a JSON body and decodes the JSON
// response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path,
		bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set(authHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned status %d: %s",
			ErrFetchFailed, req.URL.Path, resp.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %s", ErrFetchFailed, req.URL.Path, err)
	}
	return nil
}
