package perkeep

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const discoveryContentType = "text/x-camli-configuration"

type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
	now      func() time.Time

	mu        sync.Mutex
	discovery *Discovery
}

func NewClient(baseURL, user, password string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
		http:     httpClient,
		now:      time.Now,
	}
}

// Discover fetches the server's handler roots. The result is cached for
// the lifetime of the client.
func (c *Client) Discover(ctx context.Context) (Discovery, error) {
	c.mu.Lock()
	if c.discovery != nil {
		d := *c.discovery
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	req, err := c.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return Discovery{}, err
	}
	req.Header.Set("Accept", discoveryContentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return Discovery{}, fmt.Errorf("discovery request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Discovery{}, fmt.Errorf("discovery failed: invalid credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return Discovery{}, statusError("discovery", resp)
	}

	var d Discovery
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return Discovery{}, fmt.Errorf("decode discovery response: %w", err)
	}
	if d.SearchRoot == "" || d.BlobRoot == "" {
		return Discovery{}, fmt.Errorf("discovery response missing searchRoot or blobRoot")
	}

	c.mu.Lock()
	c.discovery = &d
	c.mu.Unlock()
	return d, nil
}

func (c *Client) Search(ctx context.Context, sr SearchRequest) (SearchResult, error) {
	d, err := c.Discover(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	body, err := json.Marshal(sr)
	if err != nil {
		return SearchResult{}, fmt.Errorf("encode search request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, joinRoot(d.SearchRoot, "camli/search/query"), bytes.NewReader(body))
	if err != nil {
		return SearchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SearchResult{}, statusError("search", resp)
	}

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SearchResult{}, fmt.Errorf("decode search response: %w", err)
	}
	return result, nil
}

// CreatePermanode signs and uploads a new permanode and returns its ref.
func (c *Client) CreatePermanode(ctx context.Context) (string, error) {
	d, err := c.Discover(ctx)
	if err != nil {
		return "", err
	}
	return c.signAndUpload(ctx, d, map[string]any{
		"camliVersion": 1,
		"camliType":    "permanode",
		"camliSigner":  d.Signing.PublicKeyBlobRef,
		"random":       uuid.NewString(),
	})
}

func (c *Client) SetAttribute(ctx context.Context, permanode, attr, value string) error {
	return c.claim(ctx, "set-attribute", permanode, attr, value)
}

func (c *Client) AddAttribute(ctx context.Context, permanode, attr, value string) error {
	return c.claim(ctx, "add-attribute", permanode, attr, value)
}

// ItemURL is the web UI address of ref, for opening outside the terminal.
func (c *Client) ItemURL(uiRoot, ref string) string {
	if uiRoot == "" {
		uiRoot = "/ui/"
	}
	q := make(url.Values)
	q.Set("p", ref)
	return c.baseURL + joinRoot(uiRoot, "") + "?" + q.Encode()
}

func (c *Client) claim(ctx context.Context, claimType, permanode, attr, value string) error {
	d, err := c.Discover(ctx)
	if err != nil {
		return err
	}
	_, err = c.signAndUpload(ctx, d, map[string]any{
		"camliVersion": 1,
		"camliType":    "claim",
		"camliSigner":  d.Signing.PublicKeyBlobRef,
		"claimDate":    c.now().UTC().Format(time.RFC3339Nano),
		"claimType":    claimType,
		"permaNode":    permanode,
		"attribute":    attr,
		"value":        value,
	})
	if err != nil {
		return fmt.Errorf("%s %s on %s: %w", claimType, attr, permanode, err)
	}
	return nil
}

func (c *Client) signAndUpload(ctx context.Context, d Discovery, unsigned map[string]any) (string, error) {
	if d.JSONSignRoot == "" {
		return "", fmt.Errorf("server has no signing handler")
	}
	signed, err := c.sign(ctx, d, unsigned)
	if err != nil {
		return "", err
	}
	ref := BlobRef(signed)
	if err := c.upload(ctx, d, ref, signed); err != nil {
		return "", err
	}
	return ref, nil
}

func (c *Client) sign(ctx context.Context, d Discovery, unsigned map[string]any) ([]byte, error) {
	raw, err := json.Marshal(unsigned)
	if err != nil {
		return nil, fmt.Errorf("encode claim: %w", err)
	}
	form := make(url.Values)
	form.Set("json", string(raw))

	req, err := c.newRequest(ctx, http.MethodPost, joinRoot(d.JSONSignRoot, "camli/sig/sign"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("sign", resp)
	}
	signed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read signed claim: %w", err)
	}
	return signed, nil
}

func (c *Client) upload(ctx context.Context, d Discovery, ref string, blob []byte) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(ref, ref)
	if err != nil {
		return fmt.Errorf("build upload body: %w", err)
	}
	if _, err := part.Write(blob); err != nil {
		return fmt.Errorf("build upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build upload body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, joinRoot(d.BlobRoot, "camli/upload"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("upload", resp)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// BlobRef is the content address of b.
func BlobRef(b []byte) string {
	sum := sha256.Sum224(b)
	return "sha224-" + hex.EncodeToString(sum[:])
}

func joinRoot(root, suffix string) string {
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	return root + suffix
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
