// Package client talks to a remote deployment of the collaborator API:
// resume parsing, JSON and PDF export, and narrative generation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/career-analyzer/internal/parsing"
	"github.com/jonathan/career-analyzer/internal/types"
)

// DefaultTimeout bounds a single call. PDF export starts a browser on the
// server, so this is generous.
const DefaultTimeout = 90 * time.Second

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "career-analyzer/1.0"

// APIError is a non-2xx response. Message is the server's error text and is
// meant to be shown to the user as is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Error is a transport failure: the request could not be built, sent or read.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("request to %s failed: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Export is a downloaded export file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Client calls the collaborator endpoints under BaseURL (e.g. "http://host:8080/api").
// Calls are never retried.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string

	// MaxUploadBytes caps resume uploads before they are sent (parsing.DefaultMaxBytes if <= 0).
	MaxUploadBytes int64
}

// New creates a client with the default timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		HTTP:           &http.Client{Timeout: DefaultTimeout},
		UserAgent:      DefaultUserAgent,
		MaxUploadBytes: parsing.DefaultMaxBytes,
	}
}

// ParseResume uploads a resume file and returns the extracted bullets in document order.
// Files that are not PDF or DOCX, or that exceed MaxUploadBytes, are rejected with
// *parsing.UnsupportedFormatError or *parsing.TooLargeError before any request is made.
func (c *Client) ParseResume(ctx context.Context, filename string, r io.Reader) ([]types.BulletPoint, error) {
	if !parsing.Supported(filename) {
		return nil, &parsing.UnsupportedFormatError{Filename: filename}
	}
	limit := c.MaxUploadBytes
	if limit <= 0 {
		limit = parsing.DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &Error{URL: c.endpoint("/parse-resume"), Message: "failed to read file", Cause: err}
	}
	if int64(len(data)) > limit {
		return nil, &parsing.TooLargeError{Size: int64(len(data)), Limit: limit}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &Error{URL: c.endpoint("/parse-resume"), Message: "failed to build upload", Cause: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &Error{URL: c.endpoint("/parse-resume"), Message: "failed to build upload", Cause: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &Error{URL: c.endpoint("/parse-resume"), Message: "failed to build upload", Cause: err}
	}

	resp, err := c.do(ctx, "/parse-resume", mw.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	bullets := []types.BulletPoint{}
	if err := json.NewDecoder(resp.Body).Decode(&bullets); err != nil {
		return nil, &Error{URL: c.endpoint("/parse-resume"), Message: "invalid response body", Cause: err}
	}
	return bullets, nil
}

// ExportJSON requests the JSON export of result.
func (c *Client) ExportJSON(ctx context.Context, result *types.AnalysisResult) (*Export, error) {
	return c.export(ctx, "/export/json", result)
}

// ExportPDF requests the PDF report of result.
func (c *Client) ExportPDF(ctx context.Context, result *types.AnalysisResult) (*Export, error) {
	return c.export(ctx, "/export/pdf", result)
}

// Narrative requests storytelling guidance for result, which may carry onboarding answers.
func (c *Client) Narrative(ctx context.Context, result *types.AnalysisResult) (*types.NarrativeResponse, error) {
	resp, err := c.postJSON(ctx, "/narrative", result)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var out types.NarrativeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &Error{URL: c.endpoint("/narrative"), Message: "invalid response body", Cause: err}
	}
	return &out, nil
}

func (c *Client) export(ctx context.Context, path string, result *types.AnalysisResult) (*Export, error) {
	resp, err := c.postJSON(ctx, path, result)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: c.endpoint(path), Message: "failed to read response body", Cause: err}
	}
	return &Export{
		Filename:    attachmentName(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, v any) (*http.Response, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{URL: c.endpoint(path), Message: "failed to encode request", Cause: err}
	}
	return c.do(ctx, path, "application/json", bytes.NewReader(payload))
}

// do sends a POST and turns non-2xx responses into *APIError.
func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	endpoint := c.endpoint(path)
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, &Error{URL: endpoint, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &Error{URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &Error{URL: endpoint, Message: "HTTP request failed", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	return resp, nil
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL + path
}

// errorMessage extracts the server's message from {"error": ...} or
// {"detail": ...} bodies, falling back to the status text.
func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	if text := strings.TrimSpace(string(data)); text != "" && len(text) < 500 {
		return text
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}

func attachmentName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
