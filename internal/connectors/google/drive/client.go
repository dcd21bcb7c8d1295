package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/tablekeep/loresync/internal/core/domain"
	"github.com/tablekeep/loresync/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RemoteStore = (*Client)(nil)

// MaxRetries is the maximum number of retries for a failed request.
const MaxRetries = 3

// listFields selects the file attributes listings return.
const listFields = "nextPageToken,files(id,name,mimeType,size,modifiedTime,webViewLink)"

// Client is a rate-limited Drive REST client scoped to one sync run.
//
// Every request flows through call, which enforces the run's API budget,
// paces through the shared Pacer, retries bounded times, and attaches a
// diagnostic kind to failures at the point they happen. Responses decode
// into the drive/v3 wire types.
type Client struct {
	httpClient *http.Client
	cfg        Config
	pacer      *Pacer

	mu       sync.Mutex
	requests int
}

// NewClient creates a run-scoped Drive client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("drive: %w: api key", domain.ErrMissingConfig)
	}
	cfg = cfg.withDefaults()

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		pacer:      NewPacer(cfg.Pacing),
	}, nil
}

// ListFolder returns the immediate children of a folder.
// Each listing page consumes one API call from the budget.
func (c *Client) ListFolder(ctx context.Context, folderID string) (*driven.FolderListing, error) {
	listing := &driven.FolderListing{}
	resource := "folder " + folderID

	pageToken := ""
	for {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", folderID))
		params.Set("fields", listFields)
		params.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
		params.Set("orderBy", "name")
		params.Set("key", c.cfg.APIKey)
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		body, err := c.call(ctx, c.cfg.BaseURL+"/files?"+params.Encode(), resource)
		if err != nil {
			return nil, err
		}

		var page drive.FileList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("drive: decode listing: %w", err)
		}

		for _, f := range page.Files {
			if f.MimeType == MimeTypeFolder {
				listing.Folders = append(listing.Folders, domain.RemoteFolder{ID: f.Id, Name: f.Name})
				continue
			}
			listing.Files = append(listing.Files, toRemoteFile(f))
		}

		if page.NextPageToken == "" {
			return listing, nil
		}
		pageToken = page.NextPageToken
	}
}

// Download fetches the raw bytes of a file.
// Oversized files fail with a file_size kind before any request is made.
func (c *Client) Download(ctx context.Context, file domain.RemoteFile) ([]byte, error) {
	if file.Size > c.cfg.MaxDownloadSize {
		return nil, domain.NewSyncError(domain.KindFileSize, file.Path(),
			fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, file.Size))
	}

	params := url.Values{}
	params.Set("alt", "media")
	params.Set("key", c.cfg.APIKey)

	return c.call(ctx, c.cfg.BaseURL+"/files/"+url.PathEscape(file.ID)+"?"+params.Encode(), file.Path())
}

// RequestsMade reports API requests consumed so far this run.
func (c *Client) RequestsMade() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests
}

// RateLimitEvents reports throttle responses observed so far this run.
func (c *Client) RateLimitEvents() int {
	return c.pacer.ThrottleEvents()
}

// Close releases resources.
func (c *Client) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// call is the sole request path. It checks the budget, paces, sends, and
// retries transient failures up to MaxRetries.
func (c *Client) call(ctx context.Context, requestURL, resource string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if err := c.consumeBudget(); err != nil {
			return nil, err
		}
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := c.doRequest(ctx, requestURL, resource)
		if err == nil {
			c.pacer.RecordSuccess()
			return body, nil
		}

		lastErr = err
		if !retryable || attempt == MaxRetries {
			return nil, err
		}

		kind := domain.KindOf(err)
		throttled := kind == domain.KindRateLimit || kind == domain.KindQuota
		if err := c.pacer.RetryWait(ctx, attempt, throttled); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// consumeBudget counts one attempted request against the run budget.
// A spent budget fails before anything touches the network.
func (c *Client) consumeBudget() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.requests >= c.cfg.MaxRequests {
		return fmt.Errorf("drive: %w (%d/%d)", domain.ErrCallBudgetExceeded, c.requests, c.cfg.MaxRequests)
	}
	c.requests++
	return nil
}

// doRequest sends one request and classifies the outcome.
func (c *Client) doRequest(ctx context.Context, requestURL, resource string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("drive: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, domain.NewSyncError(domain.KindNetwork, resource, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxDownloadSize))
	if err != nil {
		return nil, true, domain.NewSyncError(domain.KindNetwork, resource, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusOK {
		return data, false, nil
	}

	if isThrottleResponse(resp.StatusCode, data) {
		c.pacer.RecordThrottle()
		return nil, true, domain.NewSyncError(throttleKind(data), resource,
			fmt.Errorf("%w: status %d", domain.ErrThrottled, resp.StatusCode))
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    truncate(string(data), 200),
		URL:        redactKey(requestURL),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, domain.NewSyncError(domain.KindPermission, resource, apiErr)
	case resp.StatusCode >= 500:
		return nil, true, domain.NewSyncError(domain.KindNetwork, resource, apiErr)
	default:
		return nil, false, domain.NewSyncError(domain.KindOther, resource, apiErr)
	}
}

// toRemoteFile converts a Drive listing entry to the domain type.
func toRemoteFile(f *drive.File) domain.RemoteFile {
	rf := domain.RemoteFile{
		ID:          f.Id,
		Name:        f.Name,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		rf.ModifiedTime = t
	}
	return rf
}

// redactKey strips the API key from a URL destined for error messages.
func redactKey(requestURL string) string {
	u, err := url.Parse(requestURL)
	if err != nil {
		return requestURL
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "redacted")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// truncate bounds a response body excerpt for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
