// Package handlers implements the side effects behind each tool.
//
// Every handler receives typed arguments built by a binder from the raw
// request map, and returns the text of a successful result or an error. The
// dispatcher owns classification; handlers only wrap errors with a short
// description of what failed.
package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jpl-au/hubtools/internal/tool"
	"github.com/jpl-au/hubtools/internal/validate"
)

// ReadFileArgs are the bound arguments of read_file. A zero bound means
// the bound was not given.
type ReadFileArgs struct {
	Path  string
	Start int
	End   int
}

// ListDirectoryArgs are the bound arguments of list_directory.
type ListDirectoryArgs struct {
	Path string
}

// fsLayout names the path arguments of a filesystem tool set and whether
// listings carry a header line.
type fsLayout struct {
	fileArg string
	dirArg  string
	header  bool
}

// Filesystem returns read_file and list_directory taking a "path" argument.
func Filesystem() []tool.Definition {
	return fsTools(fsLayout{fileArg: "path", dirArg: "path"})
}

// HubFilesystem returns read_file and list_directory as the hub tool set
// declares them: "file_path" and "dir_path" arguments, and a
// "Contents of <dir>:" header on listings.
func HubFilesystem() []tool.Definition {
	return fsTools(fsLayout{fileArg: "file_path", dirArg: "dir_path", header: true})
}

func fsTools(l fsLayout) []tool.Definition {
	read := tool.Descriptor{
		Name:        "read_file",
		Description: "Read the contents of a file",
		Fields: []tool.Field{
			{Name: l.fileArg, Type: tool.TypeString, Required: true, Description: "Path to the file to read"},
			{Name: "start_line", Type: tool.TypeNumber, Description: "Starting line number, zero-based (optional)"},
			{Name: "end_line", Type: tool.TypeNumber, Description: "Ending line number, exclusive (optional)"},
		},
	}
	list := tool.Descriptor{
		Name:        "list_directory",
		Description: "List contents of a directory",
		Fields: []tool.Field{
			{Name: l.dirArg, Type: tool.TypeString, Required: true, Description: "Path to the directory to list"},
		},
	}

	bindRead := func(a tool.Args) ReadFileArgs {
		return ReadFileArgs{
			Path:  a.String(l.fileArg, ""),
			Start: a.Int("start_line", 0),
			End:   a.Int("end_line", 0),
		}
	}
	bindList := func(a tool.Args) ListDirectoryArgs {
		return ListDirectoryArgs{Path: a.String(l.dirArg, "")}
	}

	listFn := ListDirectory
	if l.header {
		listFn = func(ctx context.Context, a ListDirectoryArgs) (string, error) {
			out, err := ListDirectory(ctx, a)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Contents of %s:\n%s", a.Path, out), nil
		}
	}

	return []tool.Definition{
		{Descriptor: read, Handler: tool.Bind(bindRead, ReadFile)},
		{Descriptor: list, Handler: tool.Bind(bindList, listFn)},
	}
}

// ReadFile returns the file's lines, or the slice [Start, End) of them when
// either bound is set. Bounds follow slice semantics with clamping: a
// negative bound counts back from the end and a start past the last line
// yields an empty string.
func ReadFile(_ context.Context, a ReadFileArgs) (string, error) {
	if err := validate.Path(a.Path); err != nil {
		return "", err
	}
	b, err := os.ReadFile(a.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if a.Start == 0 && a.End == 0 {
		return string(b), nil
	}
	return sliceLines(string(b), a.Start, a.End), nil
}

// sliceLines splits on "\n", keeps [start, end) and rejoins. An end of zero
// means the line count.
func sliceLines(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	n := len(lines)
	if end == 0 {
		end = n
	}
	start, end = clampIndex(start, n), clampIndex(end, n)
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

// ListDirectory returns the names of the directory's immediate entries,
// one per line, in lexicographic order.
func ListDirectory(_ context.Context, a ListDirectoryArgs) (string, error) {
	if err := validate.Path(a.Path); err != nil {
		return "", err
	}
	entries, err := os.ReadDir(a.Path)
	if err != nil {
		return "", fmt.Errorf("failed to list directory: %w", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return strings.Join(names, "\n"), nil
}
