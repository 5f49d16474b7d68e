package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mark-15/neptunemutual-sdk/observability"
)

// Client talks to a Kubo-compatible HTTP API. Pins every write and forces
// CIDv0 so digests stay 32-byte sha2-256 values the anchoring contracts can
// carry.
type Client struct {
	api  string
	http *http.Client
}

// NewClient builds a client for the API endpoint, e.g.
// "http://127.0.0.1:5001". The transport is otel-instrumented.
func NewClient(api string) *Client {
	return &Client{
		api: strings.TrimRight(api, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Write persists the payload via /api/v0/add and returns the CIDv0 hash and
// its digest.
func (c *Client) Write(ctx context.Context, payload []byte) (string, [32]byte, error) {
	var digest [32]byte

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", "record.json")
	if err != nil {
		return "", digest, err
	}
	if _, err := part.Write(payload); err != nil {
		return "", digest, err
	}
	if err := form.Close(); err != nil {
		return "", digest, err
	}

	endpoint := c.api + "/api/v0/add?pin=true&cid-version=0"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", digest, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		observability.Content().Write("error")
		return "", digest, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		observability.Content().Write("error")
		return "", digest, fmt.Errorf("ipfs: add returned %s", resp.Status)
	}

	var added addResponse
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		observability.Content().Write("error")
		return "", digest, fmt.Errorf("ipfs: decode add response: %w", err)
	}
	if strings.TrimSpace(added.Hash) == "" {
		observability.Content().Write("error")
		return "", digest, fmt.Errorf("ipfs: add returned no hash")
	}
	digest, err = DigestFromHash(added.Hash)
	if err != nil {
		observability.Content().Write("error")
		return "", digest, err
	}
	observability.Content().Write("ok")
	return added.Hash, digest, nil
}

// Read fetches the payload under the digest via /api/v0/cat.
func (c *Client) Read(ctx context.Context, digest [32]byte) ([]byte, error) {
	endpoint := c.api + "/api/v0/cat?arg=" + url.QueryEscape(HashFromDigest(digest))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		observability.Content().Read("error")
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		observability.Content().Read("error")
		return nil, fmt.Errorf("ipfs: cat returned %s", resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.Content().Read("error")
		return nil, err
	}
	observability.Content().Read("ok")
	return payload, nil
}
