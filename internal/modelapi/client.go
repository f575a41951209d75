// Package modelapi talks to the external model-serving HTTP APIs that render
// audio. Every generation endpoint accepts a JSON body and answers with the
// URL of the rendered file.
package modelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"

	pathVoices = "/voices"

	maxErrorBody = 4 << 10
)

var (
	// ErrNotConfigured is returned by clients built without a base URL.
	ErrNotConfigured = errors.New("model api not configured")
	// ErrNoAudioURL is returned when a successful response carries no audio_url.
	ErrNoAudioURL = errors.New("no audio URL received from the API")
)

// UpstreamError describes a non-2xx answer from a model API.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("model api returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("model api returned %d", e.Status)
}

// Result is the useful part of a generation response.
type Result struct {
	AudioURL string
	BlobName string
}

type generationResponse struct {
	AudioURL string `json:"audio_url"`
	BlobName string `json:"blob_name"`
	BlobKey  string `json:"blob_key"`
}

type errorResponse struct {
	Detail any    `json:"detail"`
	Error  string `json:"error"`
}

// Client calls one model-serving API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. apiKey, when set, is sent verbatim
// in the Authorization header.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the client has somewhere to send requests.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

// Post posts body to path and returns the rendered audio location.
func (c *Client) Post(ctx context.Context, path string, body any) (*Result, error) {
	var resp generationResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if resp.AudioURL == "" {
		return nil, ErrNoAudioURL
	}
	blobName := resp.BlobName
	if blobName == "" {
		blobName = resp.BlobKey
	}
	return &Result{AudioURL: resp.AudioURL, BlobName: blobName}, nil
}

// Voices lists the voices the API can render.
func (c *Client) Voices(ctx context.Context) ([]string, error) {
	var resp struct {
		Voices []string `json:"voices"`
	}
	if err := c.do(ctx, http.MethodGet, pathVoices, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Voices == nil {
		return []string{}, nil
	}
	return resp.Voices, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerAccept, contentTypeJSON)
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	if c.apiKey != "" {
		req.Header.Set(headerAuthorization, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call model api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readUpstreamError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readUpstreamError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	upstream := &UpstreamError{Status: resp.StatusCode}

	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		switch detail := parsed.Detail.(type) {
		case string:
			upstream.Detail = detail
		case nil:
			upstream.Detail = parsed.Error
		default:
			if b, err := json.Marshal(detail); err == nil {
				upstream.Detail = string(b)
			}
		}
	}
	return upstream
}
