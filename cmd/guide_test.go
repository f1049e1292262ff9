package cmd

import "testing"

func TestGuide(t *testing.T) {
	t.Run("main guide", func(t *testing.T) {
		env := newTestEnv(t)

		out := env.run("guide")
		env.contains(out, "# hubtools")
		env.contains(out, "Quick start")
	})

	t.Run("lists available on not found", func(t *testing.T) {
		env := newTestEnv(t)

		out, err := env.runErr("guide", "nonexistent")
		if err == nil {
			t.Error("Guide(nonexistent) = nil, want error")
		}
		env.contains(out, "Available: config, fs, http, hub")
	})
}

func TestGuide_Topics(t *testing.T) {
	tests := []struct {
		topic   string
		contain string
	}{
		{"fs", "run_docker_command"},
		{"hub", "confirmation_required"},
		{"http", "POST /tools/<name>"},
		{"config", "HUB_API_KEY"},
	}

	for _, tc := range tests {
		t.Run(tc.topic, func(t *testing.T) {
			env := newTestEnv(t)

			out := env.run("guide", tc.topic)
			env.contains(out, tc.contain)
		})
	}
}
