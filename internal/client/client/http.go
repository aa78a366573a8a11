package client

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

	"github.com/dmitrijs2005/madrasati/internal/client/models"
	"github.com/dmitrijs2005/madrasati/internal/logging"
)

const (
	loginPath          = "/api/mobile/login"
	tripsPath          = "/api/parent/trips"
	circuitDetailsPath = "/api/parent/%s/circuit/details"
	studentsPath       = "/api/parent/%s/students"
	documentPath       = "/api/parent/documents/%s/base64"
)

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

// NewHTTPClient returns a client for baseURL. timeout bounds each request;
// zero leaves the net/http default (none).
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	body := models.LoginRequest{Username: username, Password: password}
	return doEnveloped[*models.LoginResult](ctx, c, http.MethodPost, loginPath, body, false)
}

func (c *HTTPClient) GetCircuitDetails(ctx context.Context, parentID string) (*models.ParentDetails, error) {
	path := fmt.Sprintf(circuitDetailsPath, url.PathEscape(parentID))
	return doEnveloped[*models.ParentDetails](ctx, c, http.MethodGet, path, nil, true)
}

func (c *HTTPClient) GetTrips(ctx context.Context) ([]models.Trip, error) {
	return doEnveloped[[]models.Trip](ctx, c, http.MethodGet, tripsPath, nil, true)
}

func (c *HTTPClient) GetStudentsByParentID(ctx context.Context, parentID string) ([]models.StudentSummary, error) {
	path := fmt.Sprintf(studentsPath, url.PathEscape(parentID))
	return doEnveloped[[]models.StudentSummary](ctx, c, http.MethodGet, path, nil, true)
}

// GetDocumentBase64 is the one endpoint answering without an envelope.
func (c *HTTPClient) GetDocumentBase64(ctx context.Context, documentID string) (*models.Document, error) {
	path := fmt.Sprintf(documentPath, url.PathEscape(documentID))
	raw, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	var doc models.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", ErrBadResponse, err)
	}
	return &doc, nil
}

func doEnveloped[T any](ctx context.Context, c *HTTPClient, method, path string, body any, auth bool) (T, error) {
	var zero T

	raw, err := c.do(ctx, method, path, body, auth)
	if err != nil {
		return zero, err
	}

	var env models.Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, fmt.Errorf("%w: decode %s: %v", ErrBadResponse, path, err)
	}
	if err := envelopeError(env.Status, env.Code, env.Message); err != nil {
		c.log.Debug(ctx, "envelope rejected", "method", method, "path", path, "code", env.Code)
		return zero, err
	}
	return env.Data, nil
}

// envelopeError reports a failure the backend wrapped in a 2xx answer:
// an error code of 400 or above, or an error status. Envelopes without
// status and code are successful.
func envelopeError(status string, code int, message string) error {
	switch {
	case code >= 400:
		return &StatusError{StatusCode: code, Message: message, kind: kindOf(code)}
	case strings.EqualFold(status, "error"), strings.EqualFold(status, "fail"), strings.EqualFold(status, "failure"):
		return &StatusError{StatusCode: http.StatusOK, Message: message, kind: ErrRejected}
	default:
		return nil
	}
}

// do sends the request and returns the body of a 2xx answer.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, auth bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.log.Debug(ctx, "http request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "http response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, raw)
	}
	return raw, nil
}

func statusError(code int, body []byte) error {
	e := &StatusError{StatusCode: code}

	// The backend usually explains itself in the envelope message.
	var env models.Envelope[json.RawMessage]
	if json.Unmarshal(body, &env) == nil {
		e.Message = env.Message
	}

	e.kind = kindOf(code)
	return e
}

func kindOf(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code >= 500:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}
