// Package api is the single gateway to the storefront backend. Every request
// carries the device id, the UI language and, when signed in, the bearer
// token; every failure is classified here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	HeaderDeviceID       = "X-Device-Id"
	HeaderAcceptLanguage = "Accept-Language"
	HeaderAuthorization  = "Authorization"

	defaultLanguage = "en"
)

type DeviceSource interface {
	ID(ctx context.Context) string
}

type LanguageSource interface {
	Language() string
}

type Options struct {
	BaseURL  string
	Timeout  time.Duration
	Device   DeviceSource
	Language LanguageSource
	// Token returns the bearer token of the current session, or "".
	Token func() string
	// OnUnauthorized runs on every 401 before the error is returned.
	OnUnauthorized func(ctx context.Context)
	Logger         *zap.Logger
	HTTPClient     *http.Client
}

type Client struct {
	baseURL        string
	http           *http.Client
	device         DeviceSource
	language       LanguageSource
	token          func() string
	onUnauthorized func(ctx context.Context)
	logger         *zap.Logger
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:        strings.TrimSuffix(opts.BaseURL, "/"),
		http:           httpClient,
		device:         opts.Device,
		language:       opts.Language,
		token:          opts.Token,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	c.decorate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("network error - no response received",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.classify(ctx, method, path, resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) decorate(ctx context.Context, req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.device != nil {
		req.Header.Set(HeaderDeviceID, c.device.ID(ctx))
	}

	lang := defaultLanguage
	if c.language != nil && c.language.Language() != "" {
		lang = c.language.Language()
	}
	req.Header.Set(HeaderAcceptLanguage, lang)

	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set(HeaderAuthorization, "Bearer "+token)
		}
	}
}

func (c *Client) classify(ctx context.Context, method, path string, status int, raw []byte) error {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    extractMessage(raw),
	}
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("message", apiErr.Message),
	}

	switch {
	case status == http.StatusUnauthorized:
		c.logger.Warn("unauthorized - clearing session", fields...)
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
	case status == http.StatusForbidden:
		c.logger.Error("forbidden - insufficient permissions", fields...)
	case status == http.StatusNotFound:
		c.logger.Error("resource not found", fields...)
	case status >= http.StatusInternalServerError:
		c.logger.Error("server error", fields...)
	default:
		c.logger.Error("api error", fields...)
	}
	return apiErr
}

func extractMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Title
}
