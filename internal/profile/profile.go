// Package profile names the tool sets the server can run.
//
// A profile turns settings into an ordered list of tool definitions. The
// two built-in profiles register themselves in init(); Build resolves one
// by name into a registry and its handlers.
//
// Design: registration panics on a duplicate name, as database/sql.Register
// does. Registration order is preserved so listings are stable.
package profile

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jpl-au/hubtools/internal/handlers"
	"github.com/jpl-au/hubtools/internal/hub"
	"github.com/jpl-au/hubtools/internal/registry"
	"github.com/jpl-au/hubtools/internal/tool"
)

// ErrUnknownProfile is returned by Build for an unregistered name.
var ErrUnknownProfile = errors.New("unknown profile")

// Settings carries what a profile needs to build its tools.
type Settings struct {
	HubURL     string
	APIKey     string
	HTTPClient *http.Client
}

// Profile is a named tool set.
type Profile struct {
	Name        string
	Description string
	Tools       func(Settings) []tool.Definition
}

var (
	mu     sync.RWMutex
	byName = make(map[string]Profile)
	order  []string
)

// Register adds a profile. Called from init() functions.
func Register(p Profile) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := byName[p.Name]; exists {
		panic("profile already registered: " + p.Name)
	}
	byName[p.Name] = p
	order = append(order, p.Name)
}

// Get returns a profile by name.
func Get(name string) (Profile, bool) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := byName[name]
	return p, ok
}

// All returns all registered profiles in registration order.
func All() []Profile {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Profile, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

// Names returns registered profile names in registration order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return append([]string(nil), order...)
}

// Build resolves the named profile into a registry and handler map.
func Build(name string, s Settings) (*registry.Registry, map[string]tool.Handler, error) {
	p, ok := Get(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownProfile, name, Names())
	}
	defs := p.Tools(s)
	reg, err := registry.New(tool.Descriptors(defs)...)
	if err != nil {
		return nil, nil, fmt.Errorf("profile %s: %w", name, err)
	}
	return reg, tool.Handlers(defs), nil
}

// fsTools lists list_directory, read_file, then the shell tools.
func fsTools(Settings) []tool.Definition {
	fs := handlers.Filesystem()
	defs := make([]tool.Definition, 0, len(fs)+2)
	for _, name := range []string{"list_directory", "read_file"} {
		for _, d := range fs {
			if d.Name == name {
				defs = append(defs, d)
			}
		}
	}
	return append(defs, handlers.ShellTools()...)
}

func hubTools(s Settings) []tool.Definition {
	return handlers.HubTools(hub.New(s.HubURL, s.APIKey, s.HTTPClient))
}

func init() {
	Register(Profile{
		Name:        "fs",
		Description: "Local filesystem and command tools",
		Tools:       fsTools,
	})
	Register(Profile{
		Name:        "hub",
		Description: "Tools forwarding to the AI hub, plus file access",
		Tools:       hubTools,
	})
}
