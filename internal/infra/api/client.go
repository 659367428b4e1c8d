// Package api is the HTTP fetch capability towards the social backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/port"
	applog "github.com/Lyuuwu/db-project-SocialMedia/internal/infra/logger"
)

const (
	refreshPath     = "/api/v1/auth/refresh"
	jsonContentType = "application/json"
)

var (
	// ErrTransport marks failures where no HTTP response was received.
	ErrTransport = errors.New("backend unreachable")
	// ErrUnauthorized matches any *Error carrying status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmptyCredential is returned when the refresh endpoint answers without a token.
	ErrEmptyCredential = errors.New("refresh returned no access token")
	// ErrEmptyUploadURL is returned when an upload succeeds without naming the stored file.
	ErrEmptyUploadURL = errors.New("upload returned no url")
)

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Client performs JSON requests against the backend, attaching the bearer
// credential and renewing it once when the backend answers 401.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials port.CredentialSource
	refresher   port.CredentialRefresher
	onAuthLost  func(ctx context.Context)
	logger      *zap.Logger
}

// NewClient constructs a client with a cookie jar that keeps the HttpOnly
// refresh cookie across calls.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: zap.NewNop(),
	}, nil
}

// WithHTTPClient swaps the underlying client. A nil jar is replaced so the
// refresh cookie still round-trips.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc == nil {
		return c
	}
	if hc.Jar == nil {
		hc.Jar = c.httpClient.Jar
	}
	c.httpClient = hc
	return c
}

// WithCredentials sets where the bearer credential is read from.
func (c *Client) WithCredentials(source port.CredentialSource) *Client {
	c.credentials = source
	return c
}

// WithRefresher enables the 401 refresh-and-retry path.
func (c *Client) WithRefresher(refresher port.CredentialRefresher) *Client {
	c.refresher = refresher
	return c
}

// WithAuthLost registers the callback run when a refresh could not rescue a
// 401. It is not run when only the caller's context ended.
func (c *Client) WithAuthLost(fn func(ctx context.Context)) *Client {
	c.onAuthLost = fn
	return c
}

// WithLogger sets the client logger.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Do sends body as JSON and decodes a 2xx response into out.
func (c *Client) Do(ctx context.Context, method, path string, body any, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	return c.do(ctx, outgoing{method: method, path: path, contentType: jsonContentType, payload: payload}, out, false)
}

// Upload POSTs file as a multipart form with a single part named field. The
// encoded form is kept so a 401 can replay it after renewal.
func (c *Client) Upload(ctx context.Context, path, field string, file domain.ImageUpload, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	partType := file.ContentType
	if partType == "" {
		partType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     field,
		"filename": file.Filename,
	}))
	header.Set("Content-Type", partType)

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}

	req := outgoing{
		method:      http.MethodPost,
		path:        path,
		contentType: form.FormDataContentType(),
		payload:     buf.Bytes(),
	}
	return c.do(ctx, req, out, false)
}

// outgoing is a fully encoded request body, replayable after a 401.
type outgoing struct {
	method      string
	path        string
	contentType string
	payload     []byte
}

func (c *Client) do(ctx context.Context, req outgoing, out any, retried bool) error {
	credential := c.credential()

	status, raw, err := c.send(ctx, req, credential)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && credential != "" && !retried {
		if c.refresher != nil && c.refresher.Refresh(ctx) {
			c.logger.Debug("retrying request with renewed credential",
				zap.String("method", req.method),
				zap.String("path", req.path),
			)
			return c.do(ctx, req, out, true)
		}
		// The caller gave up while the shared renewal is still running; it
		// may yet succeed, so the session stays.
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("awaiting credential refresh for %s %s: %w", req.method, req.path, err)
		}
		c.logger.Info("credential could not be renewed, dropping session",
			zap.String("method", req.method),
			zap.String("path", req.path),
		)
		if c.onAuthLost != nil {
			c.onAuthLost(ctx)
		}
	}

	if status < 200 || status >= 300 {
		return decodeError(status, raw)
	}
	return decodeBody(raw, out)
}

// RenewCredential exchanges the refresh cookie for a new access token.
func (c *Client) RenewCredential(ctx context.Context) (string, error) {
	status, raw, err := c.send(ctx, outgoing{method: http.MethodPost, path: refreshPath, contentType: jsonContentType}, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", decodeError(status, raw)
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodeBody(raw, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", ErrEmptyCredential
	}
	return resp.AccessToken, nil
}

func (c *Client) credential() string {
	if c.credentials == nil {
		return ""
	}
	return c.credentials.Credential()
}

func (c *Client) send(ctx context.Context, r outgoing, credential string) (int, []byte, error) {
	method, path := r.method, r.path
	var reader io.Reader
	if r.payload != nil {
		reader = bytes.NewReader(r.payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", r.contentType)
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	log := applog.For(ctx, c.logger)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read %s %s: %w", ErrTransport, method, path, err)
	}

	log.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, raw, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

func decodeBody(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// decodeError picks the message from error.message, then message, then the status.
func decodeError(status int, raw []byte) *Error {
	out := &Error{Status: status}

	var env errorEnvelope
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil {
		var body errorBody
		if len(env.Error) > 0 && json.Unmarshal(env.Error, &body) == nil {
			out.Code = body.Code
			out.Message = body.Message
			out.Details = body.Details
		}
		if out.Message == "" {
			out.Message = env.Message
		}
	}
	if out.Message == "" {
		out.Message = fmt.Sprintf("HTTP %d", status)
	}
	return out
}
