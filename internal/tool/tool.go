// Package tool defines the data model shared by every layer of the dispatch
// core: tool descriptors, invocation requests, results and the error kinds a
// caller can observe. It has no dependencies on transports or handlers.
package tool

import (
	"encoding/json"
	"strings"
)

// Field types used in input schemas.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Field describes one argument of a tool.
type Field struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// Descriptor describes a callable tool. Descriptors are built once at startup
// and never mutated.
type Descriptor struct {
	Name        string
	Description string
	Fields      []Field

	// Exclusive names an operation category. At most one invocation of any
	// tool in the same category may be in flight at a time. Empty means the
	// tool runs without restriction.
	Exclusive string
}

// RequiredFields returns the names of fields marked required, in declaration order.
func (d Descriptor) RequiredFields() []string {
	var names []string
	for _, f := range d.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// InputSchema renders the fields as a JSON Schema object.
func (d Descriptor) InputSchema() map[string]any {
	props := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		props[f.Name] = map[string]any{
			"type":        f.Type,
			"description": f.Description,
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := d.RequiredFields(); len(req) > 0 {
		schema["required"] = req
	}
	return schema
}

// MarshalJSON encodes the descriptor as {name, description, inputSchema}.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		InputSchema map[string]any `json:"inputSchema"`
	}{d.Name, d.Description, d.InputSchema()})
}

// Request is a single invocation of one tool.
type Request struct {
	Tool      string
	Arguments Args

	// ID identifies the invocation in logs and traces. The dispatcher
	// assigns one when empty.
	ID string
	// Transport names the surface the request arrived on ("mcp", "http", "cli").
	Transport string
}

// Block is one piece of result content. Text is the only kind produced.
type Block struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the normalized envelope returned for every request.
type Result struct {
	Content []Block `json:"content"`
	IsError bool    `json:"isError"`

	// Err is the classified failure behind an error result. It is not
	// serialized; transports use it to pick a status code.
	Err *Error `json:"-"`
}

// Text returns a successful result holding a single text block.
func Text(s string) Result {
	return Result{Content: []Block{{Type: "text", Text: s}}}
}

// Failure returns an error result whose text is the error message.
func Failure(err *Error) Result {
	return Result{
		Content: []Block{{Type: "text", Text: err.Error()}},
		IsError: true,
		Err:     err,
	}
}

// String joins all text blocks with newlines.
func (r Result) String() string {
	parts := make([]string, 0, len(r.Content))
	for _, b := range r.Content {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}
