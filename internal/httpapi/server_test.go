package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpl-au/hubtools/internal/dispatch"
	"github.com/jpl-au/hubtools/internal/hub"
	"github.com/jpl-au/hubtools/internal/registry"
	"github.com/jpl-au/hubtools/internal/tool"
)

type fixture struct {
	srv     *httptest.Server
	started chan struct{}
	release chan struct{}
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	f := &fixture{started: make(chan struct{}, 1), release: make(chan struct{})}

	defs := []tool.Definition{
		{
			Descriptor: tool.Descriptor{
				Name:   "echo",
				Fields: []tool.Field{{Name: "text", Type: tool.TypeString, Required: true}},
			},
			Handler: func(_ context.Context, a tool.Args) (string, error) { return a.String("text", ""), nil },
		},
		{
			Descriptor: tool.Descriptor{Name: "fail"},
			Handler:    func(context.Context, tool.Args) (string, error) { return "", errors.New("exploded") },
		},
		{
			Descriptor: tool.Descriptor{Name: "remote"},
			Handler: func(context.Context, tool.Args) (string, error) {
				return "", &hub.APIError{StatusCode: 404, Detail: "Session not found"}
			},
		},
		{
			Descriptor: tool.Descriptor{Name: "exclusive", Exclusive: "docker"},
			Handler: func(context.Context, tool.Args) (string, error) {
				f.started <- struct{}{}
				<-f.release
				return "ok", nil
			},
		},
	}
	reg, err := registry.New(tool.Descriptors(defs)...)
	require.NoError(t, err)
	d := dispatch.New(reg, tool.Handlers(defs))

	f.srv = httptest.NewServer(New(d, Config{Token: token}).Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "secret")
	status, body := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuth(t *testing.T) {
	f := newFixture(t, "secret")

	status, body := f.do(t, http.MethodPost, "/tools/echo", `{"text":"hi"}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["error"])

	status, _ = f.do(t, http.MethodPost, "/tools/echo", `{"text":"hi"}`, "wrong")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = f.do(t, http.MethodPost, "/tools/echo", `{"text":"hi"}`, "secret")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hi", body["content"])
}

func TestListTools(t *testing.T) {
	f := newFixture(t, "")
	status, body := f.do(t, http.MethodGet, "/tools", "", "")
	require.Equal(t, http.StatusOK, status)

	tools, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 4)
	first := tools[0].(map[string]any)
	assert.Equal(t, "echo", first["name"])
	schema := first["inputSchema"].(map[string]any)
	assert.Equal(t, []any{"text"}, schema["required"])
}

func TestCall_Success(t *testing.T) {
	f := newFixture(t, "")
	status, body := f.do(t, http.MethodPost, "/tools/echo", `{"text":"hello"}`, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"content": "hello"}, body)
}

func TestCall_MissingField(t *testing.T) {
	f := newFixture(t, "")
	for _, body := range []string{``, `{}`, `{"text":""}`, `{"text":null}`, `null`} {
		status, out := f.do(t, http.MethodPost, "/tools/echo", body, "")
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "Missing text", out["error"], body)
	}
}

func TestCall_InvalidJSON(t *testing.T) {
	f := newFixture(t, "")
	for _, body := range []string{`{"text":`, `[1,2]`, `"str"`} {
		status, out := f.do(t, http.MethodPost, "/tools/echo", body, "")
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, "invalid json", out["error"])
	}
}

func TestCall_FailureStatuses(t *testing.T) {
	f := newFixture(t, "")

	status, body := f.do(t, http.MethodPost, "/tools/nope", `{}`, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "UnknownTool")

	status, body = f.do(t, http.MethodPost, "/tools/fail", `{}`, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "HandlerFailure: exploded", body["error"])

	status, body = f.do(t, http.MethodPost, "/tools/remote", `{}`, "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body["error"], "Session not found")
}

func TestCall_Busy(t *testing.T) {
	f := newFixture(t, "")

	type result struct {
		status int
		body   map[string]any
	}
	first := make(chan result, 1)
	go func() {
		s, b := f.do(t, http.MethodPost, "/tools/exclusive", ``, "")
		first <- result{s, b}
	}()
	<-f.started

	status, body := f.do(t, http.MethodPost, "/tools/exclusive", ``, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "Busy")

	close(f.release)
	r := <-first
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "ok", r.body["content"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  *tool.Error
		want int
	}{
		{tool.UnknownTool("x"), http.StatusNotFound},
		{tool.MissingArgument("x", "f"), http.StatusBadRequest},
		{tool.Busy("x", "c"), http.StatusConflict},
		{tool.RemoteDetail("x", errors.New("d")), http.StatusBadGateway},
		{tool.HandlerFailure("x", errors.New("e")), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StatusFor(tc.err))
	}
}
