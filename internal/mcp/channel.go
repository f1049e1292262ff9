// channel.go implements the newline-delimited JSON-RPC channel.
//
// Design: each line is handled on its own goroutine, so a slow tool call
// does not hold up the ones behind it, but replies are written strictly in
// the order the requests were read. The reader queues one reply slot per
// line; the writer waits on the slots in queue order. Notifications get a
// slot too and simply produce nothing.
//
// tools/call for a name the registry does not know is answered here through
// the dispatcher rather than by mcp-go, which would report it as a JSON-RPC
// error instead of a tool result.

package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jpl-au/hubtools/internal/dispatch"
)

// maxPending bounds how many requests may be in flight on one channel
// before the reader stops accepting more.
const maxPending = 64

// writerGrace bounds how long Serve waits for the writer after cancellation.
const writerGrace = time.Second

// Channel serves one MCP connection over a reader and writer pair.
type Channel struct {
	srv    *server.MCPServer
	d      *dispatch.Dispatcher
	logger *slog.Logger
}

// NewChannel returns a channel for srv. d must be the dispatcher srv was
// built from.
func NewChannel(srv *server.MCPServer, d *dispatch.Dispatcher, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Channel{srv: srv, d: d, logger: logger}
}

// Serve reads requests from r and writes replies to w until r is exhausted
// or ctx is cancelled. Replies to everything read before EOF are written
// before Serve returns. After cancellation nothing more is written to w
// once Serve has returned.
func (c *Channel) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	pending := make(chan chan mcp.JSONRPCMessage, maxPending)

	writeDone := make(chan error, 1)
	go func() { writeDone <- c.writeLoop(ctx, w, pending) }()

	readDone := make(chan error, 1)
	go func() {
		readDone <- c.readLoop(ctx, r, pending)
		close(pending)
	}()

	select {
	case err := <-readDone:
		werr := <-writeDone
		if err != nil {
			return err
		}
		return werr
	case <-ctx.Done():
		select {
		case <-writeDone:
		case <-time.After(writerGrace):
			c.logger.Warn("reply writer still blocked after cancel")
		}
		return ctx.Err()
	}
}

func (c *Channel) readLoop(ctx context.Context, r io.Reader, pending chan<- chan mcp.JSONRPCMessage) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if line = bytes.TrimSpace(line); len(line) > 0 {
			if ctx.Err() != nil {
				return nil
			}
			reply := make(chan mcp.JSONRPCMessage, 1)
			select {
			case pending <- reply:
			case <-ctx.Done():
				return nil
			}
			go func(msg []byte) {
				reply <- c.handle(ctx, msg)
			}(line)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
	}
}

// writeLoop writes replies in queue order until pending is closed or ctx
// is cancelled. After a write error it keeps draining and reports the first
// error. Reply slots are buffered, so handlers never block on it.
func (c *Channel) writeLoop(ctx context.Context, w io.Writer, pending <-chan chan mcp.JSONRPCMessage) error {
	var werr error
	for {
		var reply chan mcp.JSONRPCMessage
		select {
		case r, ok := <-pending:
			if !ok {
				return werr
			}
			reply = r
		case <-ctx.Done():
			return werr
		}
		var msg mcp.JSONRPCMessage
		select {
		case msg = <-reply:
		case <-ctx.Done():
			return werr
		}
		if msg == nil || werr != nil || ctx.Err() != nil {
			continue
		}
		b, err := json.Marshal(msg)
		if err != nil {
			c.logger.Error("encode reply", "error", err)
			continue
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			werr = fmt.Errorf("write reply: %w", err)
		}
	}
}

// callEnvelope is the part of a tools/call request the channel inspects.
type callEnvelope struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Method  string `json:"method"`
	Params  struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"params"`
}

// handle answers one message. A nil reply means nothing is written.
func (c *Channel) handle(ctx context.Context, msg []byte) mcp.JSONRPCMessage {
	var env callEnvelope
	if json.Unmarshal(msg, &env) == nil &&
		env.JSONRPC == mcp.JSONRPC_VERSION &&
		env.ID != nil &&
		env.Method == string(mcp.MethodToolsCall) {
		if _, known := c.d.Registry().Lookup(env.Params.Name); !known {
			var args map[string]any
			_ = json.Unmarshal(env.Params.Arguments, &args)
			res := call(ctx, c.d, env.Params.Name, args)
			return mcp.NewJSONRPCResultResponse(mcp.NewRequestId(env.ID), toCallToolResult(res))
		}
	}
	return c.srv.HandleMessage(ctx, msg)
}
