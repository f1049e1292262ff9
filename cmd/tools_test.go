package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTools_Markdown(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.runStdin("", "tools")
	require.NoError(t, err)
	env.contains(stdout, "# Tools (fs)")
	env.contains(stdout, "## run_docker_command")
	env.contains(stdout, "category `docker`")
	env.contains(stdout, "| `path` | string | yes |")
}

func TestTools_JSON(t *testing.T) {
	tests := []struct {
		profile string
		want    []string
	}{
		{"fs", []string{"list_directory", "read_file", "run_docker_command", "run_bash_command"}},
		{"hub", []string{
			"list_beings", "get_memories", "ask_being", "read_file",
			"list_directory", "run_command_on_session", "get_session_output",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.profile, func(t *testing.T) {
			env := newTestEnv(t)

			stdout, _, err := env.runStdin("", "tools", "--profile", tc.profile, "-o", "json")
			require.NoError(t, err)

			var res struct {
				Profile string `json:"profile"`
				Tools   []struct {
					Name        string         `json:"name"`
					InputSchema map[string]any `json:"inputSchema"`
				} `json:"tools"`
			}
			require.NoError(t, json.Unmarshal([]byte(stdout), &res))
			assert.Equal(t, tc.profile, res.Profile)

			var names []string
			for _, tl := range res.Tools {
				names = append(names, tl.Name)
				assert.Equal(t, "object", tl.InputSchema["type"])
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestTools_UnknownProfile(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.runErr("tools", "--profile", "web")
	assert.Error(t, err)
	env.contains(out, "profile must be one of")
}
