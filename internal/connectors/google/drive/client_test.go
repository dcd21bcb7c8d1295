package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// testConfig returns a client config pointed at a local server with
// pacing waits shrunk so retries run in microseconds.
func testConfig(baseURL string) Config {
	return Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Pacing: PacerConfig{
			Floor:     time.Microsecond,
			JitterMax: -1,
			RetryUnit: time.Microsecond,
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := testConfig(ts.URL)
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("requires an API key", func(t *testing.T) {
		client, err := NewClient(Config{})

		assert.Nil(t, client)
		assert.ErrorIs(t, err, domain.ErrMissingConfig)
	})

	t.Run("fills defaults", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "k"})

		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.cfg.BaseURL)
		assert.Equal(t, domain.DefaultMaxAPICalls, client.cfg.MaxRequests)
		assert.Equal(t, int64(MaxDownloadSize), client.cfg.MaxDownloadSize)
		assert.Equal(t, DefaultTimeout, client.cfg.Timeout)
		assert.Equal(t, DefaultPageSize, client.cfg.PageSize)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		client, err := NewClient(Config{APIKey: "k"})

		require.NoError(t, err)
		assert.NoError(t, client.Close())
		assert.NoError(t, client.Close())
	})
}

func TestClient_ListFolder(t *testing.T) {
	t.Run("partitions files and folders", func(t *testing.T) {
		var gotQuery url.Values
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			fmt.Fprint(w, `{
				"files": [
					{"id": "folder-1", "name": "bestiary", "mimeType": "application/vnd.google-apps.folder"},
					{"id": "file-1", "name": "dragons.md", "mimeType": "text/markdown", "size": "2048",
					 "modifiedTime": "2026-03-01T10:00:00Z", "webViewLink": "https://drive.google.com/file/d/file-1/view"},
					{"id": "file-2", "name": "towns.md", "mimeType": "text/markdown", "size": "512",
					 "modifiedTime": "2026-03-02T11:30:00Z"}
				]
			}`)
		}, nil)

		listing, err := client.ListFolder(context.Background(), "root-id")

		require.NoError(t, err)
		assert.Equal(t, "'root-id' in parents and trashed=false", gotQuery.Get("q"))
		assert.Equal(t, "test-key", gotQuery.Get("key"))
		assert.Equal(t, "name", gotQuery.Get("orderBy"))

		require.Len(t, listing.Folders, 1)
		assert.Equal(t, domain.RemoteFolder{ID: "folder-1", Name: "bestiary"}, listing.Folders[0])

		require.Len(t, listing.Files, 2)
		assert.Equal(t, "file-1", listing.Files[0].ID)
		assert.Equal(t, "dragons.md", listing.Files[0].Name)
		assert.Equal(t, int64(2048), listing.Files[0].Size)
		assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), listing.Files[0].ModifiedTime)
		assert.Equal(t, "https://drive.google.com/file/d/file-1/view", listing.Files[0].WebViewLink)
		assert.Equal(t, "towns.md", listing.Files[1].Name)

		assert.Equal(t, 1, client.RequestsMade())
	})

	t.Run("follows pagination, one budget call per page", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				assert.Empty(t, r.URL.Query().Get("pageToken"))
				fmt.Fprint(w, `{"files": [{"id": "file-1", "name": "a.md", "size": "1"}], "nextPageToken": "page-2"}`)
				return
			}
			assert.Equal(t, "page-2", r.URL.Query().Get("pageToken"))
			fmt.Fprint(w, `{"files": [{"id": "file-2", "name": "b.md", "size": "1"}]}`)
		}, nil)

		listing, err := client.ListFolder(context.Background(), "root-id")

		require.NoError(t, err)
		require.Len(t, listing.Files, 2)
		assert.Equal(t, "file-1", listing.Files[0].ID)
		assert.Equal(t, "file-2", listing.Files[1].ID)
		assert.Equal(t, 2, client.RequestsMade())
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("reports malformed listings", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{not json`)
		}, nil)

		listing, err := client.ListFolder(context.Background(), "root-id")

		assert.Nil(t, listing)
		assert.ErrorContains(t, err, "decode listing")
	})
}

func TestClient_Download(t *testing.T) {
	t.Run("fetches raw file bytes", func(t *testing.T) {
		content := "# Dragons\n\nThe red dragon sleeps under the mountain."
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/files/file-9", r.URL.Path)
			assert.Equal(t, "media", r.URL.Query().Get("alt"))
			fmt.Fprint(w, content)
		}, nil)

		data, err := client.Download(context.Background(), domain.RemoteFile{ID: "file-9", Name: "dragons.md", Size: 64})

		require.NoError(t, err)
		assert.Equal(t, content, string(data))
		assert.Equal(t, 1, client.RequestsMade())
	})

	t.Run("oversized files fail before any request", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		}, func(cfg *Config) {
			cfg.MaxDownloadSize = 16
		})

		file := domain.RemoteFile{ID: "big", Name: "atlas.md", FolderPath: "maps", Size: 1 << 20}
		data, err := client.Download(context.Background(), file)

		assert.Nil(t, data)
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
		assert.Equal(t, domain.KindFileSize, domain.KindOf(err))
		assert.Equal(t, int32(0), calls.Load())
		assert.Equal(t, 0, client.RequestsMade())
	})
}

func TestClient_Budget(t *testing.T) {
	t.Run("spent budget blocks further calls", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			fmt.Fprint(w, "content")
		}, func(cfg *Config) {
			cfg.MaxRequests = 1
		})

		_, err := client.Download(context.Background(), domain.RemoteFile{ID: "f1", Size: 1})
		require.NoError(t, err)

		_, err = client.Download(context.Background(), domain.RemoteFile{ID: "f2", Size: 1})

		assert.ErrorIs(t, err, domain.ErrCallBudgetExceeded)
		assert.True(t, domain.IsBudgetExceeded(err))
		assert.Equal(t, int32(1), calls.Load(), "a spent budget must not touch the network")
	})

	t.Run("failed attempts consume the budget", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		ts.Close()

		cfg := testConfig(ts.URL)
		cfg.MaxRequests = 2
		client, err := NewClient(cfg)
		require.NoError(t, err)

		_, err = client.Download(context.Background(), domain.RemoteFile{ID: "f1", Size: 1})

		assert.ErrorIs(t, err, domain.ErrCallBudgetExceeded)
		assert.Equal(t, 2, client.RequestsMade())
	})
}

func TestClient_Retries(t *testing.T) {
	t.Run("throttle responses are retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error": {"message": "Rate limit exceeded"}}`)
				return
			}
			fmt.Fprint(w, `{"files": [{"id": "file-1", "name": "a.md", "size": "1"}]}`)
		}, nil)

		listing, err := client.ListFolder(context.Background(), "root-id")

		require.NoError(t, err)
		assert.Len(t, listing.Files, 1)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 2, client.RequestsMade())
		assert.Equal(t, 1, client.RateLimitEvents())
	})

	t.Run("persistent throttling exhausts retries", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": {"errors": [{"reason": "userRateLimitExceeded"}]}}`)
		}, nil)

		_, err := client.ListFolder(context.Background(), "root-id")

		require.Error(t, err)
		assert.True(t, domain.IsThrottled(err))
		assert.Equal(t, domain.KindRateLimit, domain.KindOf(err))
		assert.Equal(t, int32(MaxRetries+1), calls.Load())
		assert.Equal(t, MaxRetries+1, client.RateLimitEvents())
	})

	t.Run("quota exhaustion carries the quota kind", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": {"errors": [{"reason": "dailyLimitExceeded"}]}}`)
		}, nil)

		_, err := client.ListFolder(context.Background(), "root-id")

		require.Error(t, err)
		assert.True(t, domain.IsThrottled(err))
		assert.Equal(t, domain.KindQuota, domain.KindOf(err))
	})

	t.Run("server errors are retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, "content")
		}, nil)

		data, err := client.Download(context.Background(), domain.RemoteFile{ID: "f1", Size: 1})

		require.NoError(t, err)
		assert.Equal(t, "content", string(data))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("permission failures are not retried", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": "unauthorized"}`)
		}, nil)

		_, err := client.Download(context.Background(), domain.RemoteFile{ID: "f1", Size: 1})

		require.Error(t, err)
		assert.Equal(t, domain.KindPermission, domain.KindOf(err))
		assert.Equal(t, int32(1), calls.Load())

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(t, apiErr.URL, "key=redacted")
		assert.NotContains(t, apiErr.URL, "test-key")
	})

	t.Run("plain 403 is a permission failure, not throttling", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": "the caller does not have permission"}`)
		}, nil)

		_, err := client.Download(context.Background(), domain.RemoteFile{ID: "f1", Size: 1})

		require.Error(t, err)
		assert.Equal(t, domain.KindPermission, domain.KindOf(err))
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 0, client.RateLimitEvents())
	})

	t.Run("transport failures surface as network errors", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		ts.Close()

		client, err := NewClient(testConfig(ts.URL))
		require.NoError(t, err)

		_, err = client.Download(context.Background(), domain.RemoteFile{ID: "f1", Size: 1})

		require.Error(t, err)
		assert.Equal(t, domain.KindNetwork, domain.KindOf(err))
		assert.Equal(t, MaxRetries+1, client.RequestsMade())
	})
}

func TestFactory(t *testing.T) {
	t.Run("requires an API key", func(t *testing.T) {
		factory, err := NewFactory(Config{})

		assert.Nil(t, factory)
		assert.ErrorIs(t, err, domain.ErrMissingConfig)
	})

	t.Run("open applies the run budget", func(t *testing.T) {
		factory, err := NewFactory(Config{APIKey: "k", MaxRequests: 250})
		require.NoError(t, err)

		store, err := factory.Open(context.Background(), domain.RunConfig{MaxAPICalls: 7})

		require.NoError(t, err)
		client, ok := store.(*Client)
		require.True(t, ok)
		assert.Equal(t, 7, client.cfg.MaxRequests)
	})

	t.Run("open keeps the base budget when the run sets none", func(t *testing.T) {
		factory, err := NewFactory(Config{APIKey: "k", MaxRequests: 42})
		require.NoError(t, err)

		store, err := factory.Open(context.Background(), domain.RunConfig{})

		require.NoError(t, err)
		client, ok := store.(*Client)
		require.True(t, ok)
		assert.Equal(t, 42, client.cfg.MaxRequests)
	})

	t.Run("each open starts a fresh budget and pacer", func(t *testing.T) {
		factory, err := NewFactory(Config{APIKey: "k"})
		require.NoError(t, err)

		first, err := factory.Open(context.Background(), domain.RunConfig{})
		require.NoError(t, err)
		second, err := factory.Open(context.Background(), domain.RunConfig{})
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, 0, second.RequestsMade())
	})
}
