package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of a failed response is read for detail.
const maxErrorBody = 64 * 1024

// APIError is a non-2xx response from the hub.
type APIError struct {
	StatusCode int
	// Detail is the hub's own error description, taken from the "detail"
	// field of a JSON error body. Empty when the hub sent none.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// RemoteDetail returns the hub-supplied detail, if any.
func (e *APIError) RemoteDetail() string { return e.Detail }

func newAPIError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return e
	}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(b, &body) != nil || len(body.Detail) == 0 {
		return e
	}
	e.Detail = detailText(body.Detail)
	return e
}

// detailText renders a detail value: strings verbatim, anything else as
// compact JSON. null yields "".
func detailText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) != nil {
		return string(raw)
	}
	return buf.String()
}
