package validate

import (
	"fmt"
	"strings"
)

// Path validates a filesystem path argument.
//
// Validation rules:
//   - Empty paths rejected
//   - Null bytes rejected (the OS would truncate the path at the NUL)
//
// The path is otherwise passed to the OS unchanged; relative paths resolve
// against the server's working directory.
func Path(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("%w: null byte in path", ErrInvalidPath)
	}
	return nil
}
