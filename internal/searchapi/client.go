// Package searchapi is a thin client for the managed search service REST API.
// Every call persists the JSON reply under the configured output directory.
package searchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"searchkit/internal/config"
	"searchkit/internal/store"
)

const maxNameLength = 128

// ErrInvalidName is returned for resource names the service would reject.
var ErrInvalidName = errors.New("invalid resource name")

// StatusError is returned when the service replies with a status >= 300.
type StatusError struct {
	Function   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: search service returned %d", e.Function, e.StatusCode)
	}
	return fmt.Sprintf("%s: search service returned %d: %s", e.Function, e.StatusCode, body)
}

// Result describes one completed call.
type Result struct {
	Function   string
	StatusCode int
	Body       []byte
	SavedTo    string
}

// Client issues admin and query calls against one search service.
type Client struct {
	urls        URLs
	httpClient  *http.Client
	adminKey    string
	queryKey    string
	cogKey      string
	datasources config.DatasourcesConfig
	timeout     time.Duration
	responses   *store.ResponseStore
	schemas     *store.SchemaReader
	logger      *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSchemaReader replaces the on-disk schema reader.
func WithSchemaReader(r *store.SchemaReader) Option {
	return func(c *Client) { c.schemas = r }
}

// NewClient builds a client from configuration. Callers talking to the search service
// should check cfg.Validate first; skill invocations need neither URL nor keys.
func NewClient(cfg config.AppConfig, opts ...Option) *Client {
	c := &Client{
		urls:        NewURLs(cfg.Search.URL, cfg.Search.APIVersion),
		httpClient:  &http.Client{},
		adminKey:    cfg.Search.AdminKey,
		queryKey:    cfg.Search.QueryKey,
		cogKey:      cfg.Search.CognitiveServicesKey,
		datasources: cfg.Datasources,
		timeout:     cfg.Search.Timeout,
		responses:   store.NewResponseStore(cfg.Paths.OutputDir),
		schemas:     store.NewSchemaReader(cfg.Paths.SchemaDir),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URLs exposes the endpoint builder.
func (c *Client) URLs() URLs {
	return c.urls
}

// Invoke sends one request and persists a JSON reply to <output_dir>/<function>.json.
// key is sent as the api-key header when non-empty; body is JSON encoded when non-nil.
func (c *Client) Invoke(ctx context.Context, function, method, url, key string, body any) (*Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode body: %w", function, err)
		}
		reader = bytes.NewReader(payload)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("api-key", key)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %s %s: %w", function, method, redactQuery(url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", function, err)
	}

	c.logger.Info("search request completed",
		slog.String("function", function),
		slog.String("method", method),
		slog.String("url", redactQuery(url)),
		slog.Int("status", resp.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Function: function, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	result := &Result{Function: function, StatusCode: resp.StatusCode, Body: respBody}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return result, nil
	}

	saved, err := c.responses.Save(sanitizeStem(function), respBody)
	if err != nil {
		c.logger.Warn("response not persisted", slog.String("function", function), slog.String("error", err.Error()))
		return result, nil
	}
	result.SavedTo = saved
	c.logger.Debug("file written", slog.String("path", saved))
	return result, nil
}

// ValidateName checks a resource name: lowercase letters, digits, and inner dashes.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidName, name, maxNameLength)
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("%w: %q must not start or end with a dash", ErrInvalidName, name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return fmt.Errorf("%w: %q may only contain lowercase letters, digits, and dashes", ErrInvalidName, name)
		}
	}
	return nil
}

// sanitizeStem keeps document keys and similar values usable as file names.
func sanitizeStem(stem string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(stem)
}

func redactQuery(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}
