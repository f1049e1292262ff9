// Package hub provides a minimal client for the remote hub's HTTP API.
//
// The hub owns memories and terminal sessions; this client only forwards
// requests with the configured API key and reports failures with whatever
// detail the hub returned.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultURL is the hub address used when none is configured.
const DefaultURL = "http://localhost:9004"

// StatusConfirmationRequired is returned by the hub instead of running a
// terminal command it considers dangerous.
const StatusConfirmationRequired = "confirmation_required"

// ErrNoAPIKey is returned for every call when the client has no API key.
var ErrNoAPIKey = errors.New("hub api key not configured")

// Client is an HTTP client for the hub. The API key is attached to every
// request as X-API-Key and never included in errors.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a client for baseURL. If httpClient is nil, a client without
// a timeout is used; callers bound requests through the context.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: httpClient}
}

// BaseURL returns the hub address.
func (c *Client) BaseURL() string { return c.baseURL }

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// Memory is one remembered item.
type Memory struct {
	Timestamp any    `json:"timestamp"`
	Content   string `json:"content"`
}

// RecallParams filters a memory recall.
type RecallParams struct {
	BeingID string
	Query   string
	Limit   int
}

type recallResponse struct {
	Memories []Memory `json:"memories"`
}

// Recall returns memories for a being.
func (c *Client) Recall(ctx context.Context, p RecallParams) ([]Memory, error) {
	q := url.Values{}
	q.Set("q", p.Query)
	q.Set("being_id", p.BeingID)
	q.Set("limit", strconv.Itoa(p.Limit))

	var out recallResponse
	if err := c.do(ctx, http.MethodGet, "/recall", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Memories, nil
}

// AskResponse is the hub's reply to a message.
type AskResponse struct {
	Response string `json:"response"`
	Message  string `json:"message"`
}

// Text returns the response, falling back to the message.
func (r AskResponse) Text() string {
	if r.Response != "" {
		return r.Response
	}
	return r.Message
}

// Ask sends a message to a being.
func (c *Client) Ask(ctx context.Context, beingID, message string) (AskResponse, error) {
	body := map[string]string{"being_id": beingID, "message": message}
	var out AskResponse
	err := c.do(ctx, http.MethodPost, "/ask", nil, body, &out)
	return out, err
}

// CommandResponse is the hub's reply to a terminal command.
type CommandResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NeedsConfirmation reports whether the hub declined to run the command
// until it is confirmed.
func (r CommandResponse) NeedsConfirmation() bool {
	return r.Status == StatusConfirmationRequired
}

// RunCommand runs a command on a hub terminal session.
func (c *Client) RunCommand(ctx context.Context, sessionID, command string) (CommandResponse, error) {
	var out CommandResponse
	err := c.do(ctx, http.MethodPost, "/terminal/"+url.PathEscape(sessionID)+"/command", nil,
		map[string]string{"command": command}, &out)
	return out, err
}

type outputResponse struct {
	Output string `json:"output"`
}

// SessionOutput returns the last lines of a terminal session's buffer.
func (c *Client) SessionOutput(ctx context.Context, sessionID string, lines int) (string, error) {
	q := url.Values{}
	q.Set("lines", strconv.Itoa(lines))

	var out outputResponse
	err := c.do(ctx, http.MethodGet, "/terminal/"+url.PathEscape(sessionID)+"/output", q, nil, &out)
	return out.Output, err
}

// do performs one request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode hub response: %w", err)
	}
	return nil
}
