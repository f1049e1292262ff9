// log_storage.go implements SQLite-based persistent audit logging.
//
// log.go provides the fluent API for building entries; this file handles
// persistence and the query behind "hubtools log". The instance column is a
// hash of the working directory the server ran in, so entries from
// different checkouts can be told apart without storing the path.
//
// Design: Errors during logging are reported on stderr and otherwise
// ignored (best-effort). A tool call succeeds or fails on its own merits
// whether or not the audit log could record it.

package log

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Logger writes audit log entries to a SQLite database.
type Logger struct {
	db       *sql.DB
	instance string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO log (start, end, instance, source, action, transport, request_id,
		                 kind, args, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.instance, e.Source, e.Action,
		nilIfEmpty(e.Transport), nilIfEmpty(e.RequestID), nilIfEmpty(e.Kind),
		nilIfEmpty(strings.Join(e.Args, ",")),
		success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "hubtools: audit log write failed: %v\n", err)
	}
}

func (l *Logger) recent(n int, from int64) ([]Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, start, end, source, action, transport, request_id, kind, args,
		       success, error, detail
		FROM log WHERE start >= ? ORDER BY id DESC LIMIT ?`, from, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                                       Entry
			transport, reqID, kind, args, msg, dtl sql.NullString
			success                                 int
		)
		if err := rows.Scan(&e.ID, &e.Start, &e.End, &e.Source, &e.Action,
			&transport, &reqID, &kind, &args, &success, &msg, &dtl); err != nil {
			return nil, err
		}
		e.Transport = transport.String
		e.RequestID = reqID.String
		e.Kind = kind.String
		if args.String != "" {
			e.Args = strings.Split(args.String, ",")
		}
		e.Success = success == 1
		e.Error = msg.String
		if dtl.Valid {
			_ = json.Unmarshal([]byte(dtl.String), &e.Detail)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// dbPathFunc is the function that returns the database path.
// Tests can override this to use a temp directory.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	if p := os.Getenv("HUBTOOLS_LOG_DB"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to current directory if home cannot be determined.
		return filepath.Join(".hubtools", "log", "hubtools-log.db")
	}
	return filepath.Join(home, ".hubtools", "log", "hubtools-log.db")
}

func dbPath() string {
	return dbPathFunc()
}

// DBPath returns the path to the log database.
func DBPath() string {
	return dbPath()
}

// hash creates an instance identifier from a directory path.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// migrate creates the log table if it doesn't exist.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		PRAGMA busy_timeout = 5000;
		CREATE TABLE IF NOT EXISTS log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			start       INTEGER NOT NULL,
			end         INTEGER NOT NULL,
			instance    TEXT NOT NULL,
			source      TEXT NOT NULL,
			action      TEXT NOT NULL,
			transport   TEXT,
			request_id  TEXT,
			kind        TEXT,
			args        TEXT,
			success     INTEGER NOT NULL,
			error       TEXT,
			detail      TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_log_start ON log(start);
		CREATE INDEX IF NOT EXISTS idx_log_source ON log(source);
		CREATE INDEX IF NOT EXISTS idx_log_request ON log(request_id);
	`)
	return err
}

// nilIfEmpty returns nil for empty strings, reducing NULL checks in queries.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
