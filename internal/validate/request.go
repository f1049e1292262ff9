package validate

import (
	"github.com/jpl-au/hubtools/internal/registry"
	"github.com/jpl-au/hubtools/internal/tool"
)

// Request confirms name is registered and every required field is present
// in args. The returned error is always a *tool.Error.
func Request(reg *registry.Registry, name string, args tool.Args) (tool.Descriptor, error) {
	d, ok := reg.Lookup(name)
	if !ok {
		return tool.Descriptor{}, tool.UnknownTool(name)
	}
	if err := Required(d, args); err != nil {
		return d, err
	}
	return d, nil
}

// Required reports the first required field of d missing from args, in
// schema order. A field is missing when absent, null or the empty string.
func Required(d tool.Descriptor, args tool.Args) error {
	for _, f := range d.RequiredFields() {
		if !args.Present(f) {
			return tool.MissingArgument(d.Name, f)
		}
	}
	return nil
}
