package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/roach88/qcform/internal/form"
)

// snippetLen bounds how much of a response body is kept for diagnostics.
const snippetLen = 200

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 32 << 20

// Endpoints are the URLs of the three remote collaborators.
type Endpoints struct {
	Specs     string
	Submit    string
	Allowlist string
}

// Client is an HTTP client for the remote store.
// It implements catalog.Source, form.Sink and access.AllowlistSource.
type Client struct {
	endpoints Endpoints
	http      *http.Client
	logger    *slog.Logger
}

// NewClient creates a client. A nil httpClient uses a client without timeout
// (requests end only through the caller's context); a nil logger uses
// slog.Default().
func NewClient(endpoints Endpoints, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{endpoints: endpoints, http: httpClient, logger: logger}
}

// FetchSpecs returns the raw specification table.
func (c *Client) FetchSpecs(ctx context.Context) ([]byte, error) {
	const op = "fetch specs"

	body, status, err := c.do(ctx, op, http.MethodGet, c.endpoints.Specs, nil)
	if err != nil {
		return nil, err
	}
	if isMarkup(body) {
		return nil, malformed(op, status, "remote returned markup instead of JSON", body, nil)
	}
	return body, nil
}

// allowlistReply is the allowlist endpoint's answer.
type allowlistReply struct {
	Success bool     `json:"success"`
	Emails  []string `json:"emails"`
	Error   string   `json:"error,omitempty"`
}

// FetchAllowlist returns the remote list of allowed identities.
// A reply with success=false is an ErrCodeRejected error.
func (c *Client) FetchAllowlist(ctx context.Context) ([]string, error) {
	const op = "fetch allowlist"

	if c.endpoints.Allowlist == "" {
		return nil, &RemoteError{Code: ErrCodeTransport, Op: op, Message: "no allowlist endpoint configured"}
	}

	body, status, err := c.do(ctx, op, http.MethodGet, c.endpoints.Allowlist, nil)
	if err != nil {
		return nil, err
	}
	if isMarkup(body) {
		return nil, malformed(op, status, "remote returned markup instead of JSON", body, nil)
	}

	var reply allowlistReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, malformed(op, status, "could not decode allowlist reply", body, err)
	}
	if !reply.Success {
		msg := reply.Error
		if msg == "" {
			msg = "allowlist source reported failure"
		}
		return nil, &RemoteError{Code: ErrCodeRejected, Op: op, Status: status, Message: msg}
	}
	return reply.Emails, nil
}

// batch is the submission payload.
type batch struct {
	Data []form.Record `json:"data"`
}

// Submit sends records as a single batch.
//
// The reply is checked for markup before it is decoded. A reply object with
// "status": "error" (or a non-empty "error" string) is ErrCodeRejected.
// Accepted is the reply's "count" when present, else len(records).
func (c *Client) Submit(ctx context.Context, records []form.Record) (form.Receipt, error) {
	const op = "submit"

	payload, err := json.Marshal(batch{Data: records})
	if err != nil {
		return form.Receipt{}, fmt.Errorf("%s: encode batch: %w", op, err)
	}

	body, status, err := c.do(ctx, op, http.MethodPost, c.endpoints.Submit, payload)
	if err != nil {
		return form.Receipt{}, err
	}
	if isMarkup(body) {
		return form.Receipt{}, malformed(op, status, "remote returned markup instead of JSON, possible script error", body, nil)
	}

	var reply map[string]any
	if err := json.Unmarshal(body, &reply); err != nil {
		return form.Receipt{}, malformed(op, status, "could not decode reply", body, err)
	}

	if msg, rejected := rejection(reply); rejected {
		return form.Receipt{}, &RemoteError{Code: ErrCodeRejected, Op: op, Status: status, Message: msg, Snippet: snippet(body)}
	}

	accepted := len(records)
	if n, ok := reply["count"].(float64); ok {
		accepted = int(n)
	}
	return form.Receipt{Accepted: accepted, Reply: reply}, nil
}

// do performs a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, url string, payload []byte) ([]byte, int, error) {
	if url == "" {
		return nil, 0, &RemoteError{Code: ErrCodeTransport, Op: op, Message: "no endpoint configured"}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &RemoteError{Code: ErrCodeTransport, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, &RemoteError{Code: ErrCodeTransport, Op: op, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	c.logger.Debug("remote response",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.String("body", snippet(body)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if isMarkup(body) {
			return nil, resp.StatusCode, malformed(op, resp.StatusCode, "remote returned an error page", body, nil)
		}
		return nil, resp.StatusCode, &RemoteError{
			Code:    ErrCodeTransport,
			Op:      op,
			Status:  resp.StatusCode,
			Message: "unexpected status",
			Snippet: snippet(body),
		}
	}
	return body, resp.StatusCode, nil
}

func isMarkup(body []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(body)), "<")
}

func malformed(op string, status int, msg string, body []byte, err error) *RemoteError {
	return &RemoteError{Code: ErrCodeMalformed, Op: op, Status: status, Message: msg, Snippet: snippet(body), Err: err}
}

// snippet returns at most snippetLen bytes of body, cut on a rune boundary.
func snippet(body []byte) string {
	if len(body) > snippetLen {
		cut := snippetLen
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return strings.ToValidUTF8(string(body), "\uFFFD")
}

func rejection(reply map[string]any) (string, bool) {
	if status, _ := reply["status"].(string); strings.EqualFold(status, "error") {
		msg, _ := reply["message"].(string)
		if msg == "" {
			msg = "store reported an error"
		}
		return msg, true
	}
	if msg, _ := reply["error"].(string); msg != "" {
		return msg, true
	}
	return "", false
}
