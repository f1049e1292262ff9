// Package validate checks inbound tool invocations before dispatch.
//
// Validation is shallow: a request must name a
// registered tool and carry every field its schema marks required. Value
// types are not checked here; handlers bind arguments leniently through
// tool.Args.
//
// # Validation Functions
//
//   - Request: tool name exists and required fields are present
//   - Required: required-field check only, for transports that answer
//     missing fields themselves
//   - Path: filesystem path arguments handed to handlers
package validate
