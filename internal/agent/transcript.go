// internal/agent/transcript.go
package agent

import "strings"

// Role tags one transcript turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in the conversation transcript.
type Message struct {
	Role    Role
	Content string
}

// Transcript is the append-only ordered conversation state for a single
// request. It always begins with one system turn and one user turn; every
// later turn is an (assistant, tool) pair appended by the loop controller.
// Not safe for concurrent use; each request owns its own transcript.
type Transcript struct {
	messages []Message
}

// NewTranscript seeds the transcript with the command vocabulary and the
// user's query.
func NewTranscript(systemPrompt, query string) *Transcript {
	return &Transcript{
		messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: query},
		},
	}
}

// AppendAssistant records the raw completion-service output that produced the
// just-executed command.
func (t *Transcript) AppendAssistant(content string) {
	t.messages = append(t.messages, Message{Role: RoleAssistant, Content: content})
}

// AppendTool records the observation produced by executing a command.
func (t *Transcript) AppendTool(content string) {
	t.messages = append(t.messages, Message{Role: RoleTool, Content: content})
}

// Render flattens the transcript into a single prompt text, one `ROLE:
// content` entry per turn separated by blank lines, preserving insertion
// order exactly. Rendering has no side effects and is idempotent.
func (t *Transcript) Render() string {
	var b strings.Builder
	for i, msg := range t.messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.ToUpper(string(msg.Role)))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Size returns the exact byte size of the rendered transcript, used to enforce
// the optional transcript growth bound.
func (t *Transcript) Size() int {
	size := 0
	for i, msg := range t.messages {
		if i > 0 {
			size += 2 // blank-line joiner
		}
		size += len(msg.Role) + 2 + len(msg.Content)
	}
	return size
}

// Messages returns a copy of the transcript turns for inspection.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}
