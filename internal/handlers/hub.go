// hub.go implements the tools that forward to the remote hub.
//
// Each handler is a thin translation between bound arguments and one
// hub.Client call. Hub errors are wrapped, not replaced, so the dispatcher
// can still find the remote detail with errors.As.

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/jpl-au/hubtools/internal/hub"
	"github.com/jpl-au/hubtools/internal/tool"
)

// Beings is the fixed roster reported by list_beings. The hub has no
// endpoint for it, so it is never fetched.
var Beings = []string{"jon", "claude", "grok", "ara", "ani", "tabby", "swarm", "dream_team"}

// Defaults for optional hub arguments.
const (
	DefaultMemoryLimit = 10
	DefaultOutputLines = 100
)

// MemoriesArgs are the bound arguments of get_memories.
type MemoriesArgs struct {
	BeingID string
	Query   string
	Limit   int
}

// AskArgs are the bound arguments of ask_being.
type AskArgs struct {
	BeingID string
	Message string
}

// SessionCommandArgs are the bound arguments of run_command_on_session.
type SessionCommandArgs struct {
	SessionID string
	Command   string
}

// SessionOutputArgs are the bound arguments of get_session_output.
type SessionOutputArgs struct {
	SessionID string
	Lines     int
}

// Hub runs the hub tools against one client.
type Hub struct {
	client *hub.Client
}

// NewHub returns hub handlers backed by c.
func NewHub(c *hub.Client) *Hub {
	return &Hub{client: c}
}

// HubTools returns the hub tool set in its advertised order, with the hub
// variants of read_file and list_directory in the middle.
func HubTools(c *hub.Client) []tool.Definition {
	h := NewHub(c)
	fs := HubFilesystem()

	defs := []tool.Definition{
		{
			Descriptor: tool.Descriptor{
				Name:        "list_beings",
				Description: "List all available AI beings in the hub",
			},
			Handler: func(context.Context, tool.Args) (string, error) { return ListBeings(), nil },
		},
		{
			Descriptor: tool.Descriptor{
				Name:        "get_memories",
				Description: "Retrieve memories for a specific being",
				Fields: []tool.Field{
					{Name: "being_id", Type: tool.TypeString, Required: true, Description: "The being ID (jon, claude, grok, etc.)"},
					{Name: "query", Type: tool.TypeString, Description: "Search query for memories (optional)"},
					{Name: "limit", Type: tool.TypeNumber, Description: "Maximum number of memories to return (default: 10)"},
				},
			},
			Handler: tool.Bind(func(a tool.Args) MemoriesArgs {
				return MemoriesArgs{
					BeingID: a.String("being_id", ""),
					Query:   a.String("query", ""),
					Limit:   a.Int("limit", DefaultMemoryLimit),
				}
			}, h.GetMemories),
		},
		{
			Descriptor: tool.Descriptor{
				Name:        "ask_being",
				Description: "Send a question or message to an AI being",
				Fields: []tool.Field{
					{Name: "being_id", Type: tool.TypeString, Required: true, Description: "The being ID to ask (claude, grok, etc.)"},
					{Name: "message", Type: tool.TypeString, Required: true, Description: "The message to send"},
				},
			},
			Handler: tool.Bind(func(a tool.Args) AskArgs {
				return AskArgs{BeingID: a.String("being_id", ""), Message: a.String("message", "")}
			}, h.AskBeing),
		},
	}
	defs = append(defs, fs...)
	return append(defs,
		tool.Definition{
			Descriptor: tool.Descriptor{
				Name:        "run_command_on_session",
				Description: "Run a command on an active terminal session (use carefully - confirmation may be required)",
				Fields: []tool.Field{
					{Name: "session_id", Type: tool.TypeString, Required: true, Description: "The session ID to run command on"},
					{Name: "command", Type: tool.TypeString, Required: true, Description: "The command to execute"},
				},
			},
			Handler: tool.Bind(func(a tool.Args) SessionCommandArgs {
				return SessionCommandArgs{SessionID: a.String("session_id", ""), Command: a.String("command", "")}
			}, h.RunCommandOnSession),
		},
		tool.Definition{
			Descriptor: tool.Descriptor{
				Name:        "get_session_output",
				Description: "Get the current output/buffer of a terminal session",
				Fields: []tool.Field{
					{Name: "session_id", Type: tool.TypeString, Required: true, Description: "The session ID to get output from"},
					{Name: "lines", Type: tool.TypeNumber, Description: "Number of lines to retrieve (default: 100)"},
				},
			},
			Handler: tool.Bind(func(a tool.Args) SessionOutputArgs {
				return SessionOutputArgs{SessionID: a.String("session_id", ""), Lines: a.Int("lines", DefaultOutputLines)}
			}, h.GetSessionOutput),
		},
	)
}

// ListBeings returns the fixed roster.
func ListBeings() string {
	return "Available beings: " + strings.Join(Beings, ", ")
}

// GetMemories recalls memories for a being.
func (h *Hub) GetMemories(ctx context.Context, a MemoriesArgs) (string, error) {
	mems, err := h.client.Recall(ctx, hub.RecallParams{BeingID: a.BeingID, Query: a.Query, Limit: a.Limit})
	if err != nil {
		return "", fmt.Errorf("failed to get memories: %w", err)
	}
	entries := make([]string, len(mems))
	for i, m := range mems {
		entries[i] = fmt.Sprintf("[%s] %s", timestamp(m.Timestamp), m.Content)
	}
	return fmt.Sprintf("Memories for %s:\n\n%s", a.BeingID, strings.Join(entries, "\n\n")), nil
}

func timestamp(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// AskBeing sends a message to a being and returns its reply.
func (h *Hub) AskBeing(ctx context.Context, a AskArgs) (string, error) {
	resp, err := h.client.Ask(ctx, a.BeingID, a.Message)
	if err != nil {
		return "", fmt.Errorf("failed to ask being: %w", err)
	}
	return resp.Text(), nil
}

// RunCommandOnSession forwards a command to a hub terminal session. When
// the hub holds the command for confirmation the result says so with a
// "confirmation_required:" prefix instead of reporting execution.
func (h *Hub) RunCommandOnSession(ctx context.Context, a SessionCommandArgs) (string, error) {
	resp, err := h.client.RunCommand(ctx, a.SessionID, a.Command)
	if err != nil {
		return "", fmt.Errorf("failed to run command on session: %w", err)
	}
	if resp.NeedsConfirmation() {
		return fmt.Sprintf("%s: %s", hub.StatusConfirmationRequired, resp.Message), nil
	}
	msg := resp.Message
	if msg == "" {
		msg = "Success"
	}
	return fmt.Sprintf("Command executed on session %s: %s", a.SessionID, msg), nil
}

// GetSessionOutput returns the tail of a terminal session's buffer.
func (h *Hub) GetSessionOutput(ctx context.Context, a SessionOutputArgs) (string, error) {
	out, err := h.client.SessionOutput(ctx, a.SessionID, a.Lines)
	if err != nil {
		return "", fmt.Errorf("failed to get session output: %w", err)
	}
	if out == "" {
		out = "No output"
	}
	return fmt.Sprintf("Session %s output:\n%s", a.SessionID, out), nil
}
