package conversation

import (
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered sequence of messages. The first message is
// always the system prompt; every helper in this package preserves that.
type Conversation []Message

// New creates a conversation seeded with a system prompt and the user's
// question.
func New(systemPrompt, question string) Conversation {
	return Conversation{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: question},
	}
}

// Append returns the conversation with a new message added.
func (c Conversation) Append(role Role, content string) Conversation {
	return append(c, Message{Role: role, Content: content})
}

// Clone returns a copy that shares no backing storage with the original.
func (c Conversation) Clone() Conversation {
	out := make(Conversation, len(c))
	copy(out, c)
	return out
}

// System returns the system message, or the zero Message for an empty
// conversation.
func (c Conversation) System() Message {
	if len(c) == 0 {
		return Message{}
	}
	return c[0]
}

// ReplaceLast swaps the content of the final message. Used by the run loop
// to substitute the forced-answer instruction for the last tool response.
func (c Conversation) ReplaceLast(content string) Conversation {
	if len(c) == 0 {
		return c
	}
	out := c.Clone()
	out[len(out)-1].Content = content
	return out
}

func (c Conversation) String() string {
	var sb strings.Builder
	for _, m := range c {
		sb.WriteString("[")
		sb.WriteString(string(m.Role))
		sb.WriteString("]: ")
		sb.WriteString(strings.TrimRight(m.Content, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}
