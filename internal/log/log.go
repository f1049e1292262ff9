// Package log provides the audit log for hubtools tool invocations.
// Entries are stored in ~/.hubtools/log/hubtools-log.db and record every
// dispatched call across transports and working directories.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	log.Event("mcp:read_file", "call").
//		Request(req.ID).
//		Transport(req.Transport).
//		Args(req.Arguments.Names()).
//		Write(err)
//
//	log.Event("cli:config", "set").
//		Detail("key", key).
//		Write(err)
//
// The source follows the format "{transport}:{tool}" for tool calls, for
// example "mcp:read_file", "http:ask_being" or "cli:run_bash_command".
//
// Argument values and credentials are never logged. Tool calls record the
// argument names only.
package log

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single log entry.
type Entry struct {
	ID        int64
	Source    string // e.g., "mcp:read_file", "cli:config"
	Action    string // verb: call, set, serve
	Transport string // mcp, http, cli
	RequestID string
	Kind      string   // failure kind of a tool call, empty on success
	Args      []string // argument names, never values

	// Timing, unix milliseconds.
	Start int64
	End   int64

	Success bool
	Error   string
	Detail  map[string]any
}

// Duration returns the elapsed time between Start and End.
func (e Entry) Duration() time.Duration {
	return time.Duration(e.End-e.Start) * time.Millisecond
}

// Builder constructs a log entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write]
// to write the entry.
type Builder struct {
	entry Entry
}

// Event creates a new log entry builder for an operation. The start time is
// taken now.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().UnixMilli(),
		},
	}
}

// Transport sets the surface the call arrived on.
func (b *Builder) Transport(t string) *Builder {
	b.entry.Transport = t
	return b
}

// Request sets the request id shared with runtime logs and traces.
func (b *Builder) Request(id string) *Builder {
	b.entry.RequestID = id
	return b
}

// Kind sets the failure kind of a tool call.
func (b *Builder) Kind(k string) *Builder {
	b.entry.Kind = k
	return b
}

// Args records which arguments were supplied. Pass names only.
func (b *Builder) Args(names []string) *Builder {
	b.entry.Args = names
	return b
}

// Detail adds a key-value pair to the log entry's detail map.
//
// Use for operation-specific data that doesn't fit standard fields, such
// as a config key or the listen address of a server.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the log entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful.
// If err is non-nil, the entry is logged as failed with the error message.
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().UnixMilli()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	wd, _ := os.Getwd()
	global = &Logger{db: db, instance: hash(wd)}
	return nil
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Recent returns up to n of the latest entries, newest first. It returns
// nothing when the logger is not open.
func Recent(n int) ([]Entry, error) {
	return RecentSince(n, time.Time{})
}

// RecentSince is Recent restricted to entries started at or after since.
// A zero since means no restriction.
func RecentSince(n int, since time.Time) ([]Entry, error) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return nil, nil
	}
	var from int64
	if !since.IsZero() {
		from = since.UnixMilli()
	}
	return l.recent(n, from)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
