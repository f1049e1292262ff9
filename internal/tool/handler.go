package tool

import "context"

// Handler performs one tool's side effect and returns its text output.
// Arguments have already passed presence validation.
type Handler func(ctx context.Context, args Args) (string, error)

// Definition pairs a descriptor with the handler that backs it.
type Definition struct {
	Descriptor
	Handler Handler
}

// Bind builds a Handler from a binder that converts the raw arguments into a
// typed value and a function that runs on that value.
func Bind[T any](bind func(Args) T, run func(context.Context, T) (string, error)) Handler {
	return func(ctx context.Context, args Args) (string, error) {
		return run(ctx, bind(args))
	}
}

// Descriptors returns the descriptors of defs, in order.
func Descriptors(defs []Definition) []Descriptor {
	out := make([]Descriptor, len(defs))
	for i, d := range defs {
		out[i] = d.Descriptor
	}
	return out
}

// Handlers indexes the handlers of defs by tool name.
func Handlers(defs []Definition) map[string]Handler {
	out := make(map[string]Handler, len(defs))
	for _, d := range defs {
		out[d.Name] = d.Handler
	}
	return out
}
