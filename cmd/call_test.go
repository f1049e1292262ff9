package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall_ReadFile(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("notes.txt", "l0\nl1\nl2\nl3")

	stdout, _, err := env.runStdin("", "call", "read_file", "--arg", "path=notes.txt")
	require.NoError(t, err)
	env.equals(stdout, "l0\nl1\nl2\nl3")

	stdout, _, err = env.runStdin("", "call", "read_file", "--args", `{"path":"notes.txt","start_line":1,"end_line":3}`)
	require.NoError(t, err)
	env.equals(stdout, "l1\nl2")

	// --arg values are strings; numeric fields still bind.
	stdout, _, err = env.runStdin("", "call", "read_file", "--arg", "path=notes.txt", "--arg", "start_line=3")
	require.NoError(t, err)
	env.equals(stdout, "l3")
}

func TestCall_ListDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile("b.txt", "")
	env.writeFile("a.txt", "")

	stdout, _, err := env.runStdin("", "call", "list_directory", "--arg", "path=.")
	require.NoError(t, err)
	env.equals(stdout, "a.txt\nb.txt")
}

func TestCall_Bash(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.runStdin("", "call", "run_bash_command", "--arg", "command=echo hello")
	require.NoError(t, err)
	env.equals(stdout, "hello")
}

func TestCall_JSON(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.runStdin("", "call", "run_bash_command", "--arg", "command=echo hi", "-o", "json")
	require.NoError(t, err)

	var res struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "hi\n", res.Content[0].Text)
}

func TestCall_Failures(t *testing.T) {
	env := newTestEnv(t)

	t.Run("unknown tool", func(t *testing.T) {
		stdout, _, err := env.runStdin("", "call", "write_file")
		assert.Error(t, err)
		env.contains(stdout, "UnknownTool")
	})

	t.Run("missing argument", func(t *testing.T) {
		stdout, _, err := env.runStdin("", "call", "read_file")
		assert.Error(t, err)
		env.contains(stdout, "MissingArgument(path)")
	})

	t.Run("handler failure", func(t *testing.T) {
		stdout, _, err := env.runStdin("", "call", "read_file", "--arg", "path=missing.txt")
		assert.Error(t, err)
		env.contains(stdout, "HandlerFailure")
	})

	t.Run("bad args json", func(t *testing.T) {
		_, stderr, err := env.runStdin("", "call", "read_file", "--args", "[1]")
		assert.Error(t, err)
		env.contains(stderr, "--args must be a JSON object")
	})
}

func TestCall_Hub(t *testing.T) {
	hub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid API key"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"confirmation_required","message":"approve rm"}`))
	}))
	t.Cleanup(hub.Close)

	env := newTestEnv(t)
	env.setenv("HUB_URL", hub.URL)

	t.Run("no key", func(t *testing.T) {
		stdout, _, err := env.runStdin("", "call", "--profile", "hub", "run_command_on_session",
			"--arg", "session_id=s1", "--arg", "command=rm x")
		assert.Error(t, err)
		env.contains(stdout, "hub api key not configured")
	})

	t.Run("list beings needs no key", func(t *testing.T) {
		stdout, _, err := env.runStdin("", "call", "--profile", "hub", "list_beings")
		require.NoError(t, err)
		env.contains(stdout, "Available beings: jon")
	})

	env.setenv("HUB_API_KEY", "k")

	t.Run("confirmation passthrough", func(t *testing.T) {
		stdout, _, err := env.runStdin("", "call", "--profile", "hub", "run_command_on_session",
			"--arg", "session_id=s1", "--arg", "command=rm x")
		require.NoError(t, err)
		env.equals(stdout, "confirmation_required: approve rm")
	})
}

func TestCall_EnvFile(t *testing.T) {
	env := newTestEnv(t)
	env.writeFile(".env", "HUBTOOLS_PROFILE=hub\n")

	stdout, _, err := env.runStdin("", "call", "list_beings")
	require.NoError(t, err)
	env.contains(stdout, "Available beings")
}
