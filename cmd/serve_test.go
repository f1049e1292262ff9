package cmd

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcReply struct {
	ID     any             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code int `json:"code"`
	} `json:"error"`
}

func parseReplies(t *testing.T, stdout string) []rpcReply {
	t.Helper()
	var replies []rpcReply
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		var r rpcReply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		replies = append(replies, r)
	}
	return replies
}

// freeAddr returns a loopback address with a port nothing is listening on.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServe_Stdio(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("hello.txt", "hello world")

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"t","version":"0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"read_file","arguments":{"path":"hello.txt"}}}`,
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"write_file","arguments":{}}}`,
	}, "\n") + "\n"

	stdout, stderr, err := env.runStdin(input, "serve", "--no-http")
	require.NoError(t, err, stderr)

	replies := parseReplies(t, stdout)
	require.Len(t, replies, 4)
	for i, r := range replies {
		assert.Equal(t, float64(i+1), r.ID)
		assert.Nil(t, r.Error)
	}

	var list struct {
		Tools []struct{ Name string } `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(replies[1].Result, &list))
	require.Len(t, list.Tools, 4)
	assert.Equal(t, "list_directory", list.Tools[0].Name)

	var call struct {
		Content []struct{ Text string } `json:"content"`
		IsError bool                    `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(replies[2].Result, &call))
	assert.False(t, call.IsError)
	assert.Equal(t, "hello world", call.Content[0].Text)

	require.NoError(t, json.Unmarshal(replies[3].Result, &call))
	assert.True(t, call.IsError)
	assert.Contains(t, call.Content[0].Text, "UnknownTool")

	assert.Contains(t, stderr, "serving")
}

func TestServe_StdioEOFStopsHTTP(t *testing.T) {
	env := newTestEnv(t)

	done := make(chan error, 1)
	go func() {
		_, _, err := env.runStdin("", "serve", "--http", freeAddr(t))
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not exit after stdin closed")
	}
}

func TestServe_HTTP(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("a.txt", "")
	env.setenv("MCP_TOKEN", "tok")
	addr := freeAddr(t)

	cmd := env.command("serve", "--no-stdio", "--http", addr)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	post := func(path, body, token string) (int, map[string]any) {
		req, err := http.NewRequest(http.MethodPost, base+path, strings.NewReader(body))
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	status, _ := post("/tools/list_directory", `{"path":"."}`, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := post("/tools/list_directory", `{"path":"."}`, "tok")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a.txt", body["content"])

	status, body = post("/tools/read_file", `{}`, "tok")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing path", body["error"])

	require.NoError(t, cmd.Process.Signal(os.Interrupt))
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not exit on interrupt")
	}
}

func TestServe_RequireKey(t *testing.T) {
	env := newTestEnv(t)
	env.run("config", "hub.require_key", "true")

	_, stderr, err := env.runStdin("", "serve", "--profile", "hub", "--no-http")
	assert.Error(t, err)
	assert.Contains(t, stderr, "hub api key not configured")
}

func TestServe_MissingKeyWarns(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, err := env.runStdin("", "serve", "--profile", "hub", "--no-http")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=WARN")
	assert.Contains(t, stderr, "hub api key not configured")
	assert.Contains(t, stderr, "hub=http://localhost:9004")
}

func TestServe_NothingToServe(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.runErr("serve", "--no-stdio", "--no-http")
	assert.Error(t, err)
	env.contains(out, "nothing to serve")
}
