package window

import (
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/sherlock/pkg/conversation"
	"github.com/go-go-golems/sherlock/pkg/tokens"
)

// Tail sizes for the two truncation passes. The first pass keeps the
// system prompt and the four most recent messages; if that is still over
// budget the second pass keeps only the last two.
const (
	firstPassTail  = 4
	secondPassTail = 2
)

// Manager applies the context-window truncation policy. It never drops
// the system message.
type Manager struct {
	counter tokens.Counter
}

func NewManager(counter tokens.Counter) *Manager {
	return &Manager{counter: counter}
}

// Enforce returns the conversation truncated to fit maxTokens. A
// conversation already within budget is returned unchanged, so repeated
// application is a no-op.
func (m *Manager) Enforce(conv conversation.Conversation, maxTokens int) conversation.Conversation {
	if len(conv) == 0 {
		return conv
	}

	measured := m.counter.Measure(conv)
	if measured <= maxTokens {
		return conv
	}

	log.Debug().
		Int("tokens", measured).
		Int("max_tokens", maxTokens).
		Int("messages", len(conv)).
		Msg("window: over budget, truncating")

	truncated := keepSystemAndTail(conv, firstPassTail)
	if m.counter.Measure(truncated) <= maxTokens {
		return truncated
	}

	return keepSystemAndTail(conv, secondPassTail)
}

// keepSystemAndTail keeps conv[0] plus the last n messages. When the
// conversation is short enough that the tail would overlap the system
// message, it is returned as-is.
func keepSystemAndTail(conv conversation.Conversation, n int) conversation.Conversation {
	if len(conv) <= n+1 {
		return conv
	}
	out := make(conversation.Conversation, 0, n+1)
	out = append(out, conv[0])
	out = append(out, conv[len(conv)-n:]...)
	return out
}
