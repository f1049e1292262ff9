// errors.go defines sentinel errors for argument validation failures.
//
// Request-level failures (unknown tool, missing field) are reported as
// *tool.Error so they carry their kind to the caller. The sentinels here
// cover values handlers reject after binding.

package validate

import "errors"

var (
	ErrInvalidPath = errors.New("invalid path")
)
