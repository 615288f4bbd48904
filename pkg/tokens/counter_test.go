package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/sherlock/pkg/conversation"
)

func TestMeasureMonotonic(t *testing.T) {
	t.Parallel()

	counter := NewDefaultCounter()

	conv := conversation.New("You are a research assistant.", "What is the airspeed of an unladen swallow?")
	before := counter.Measure(conv)

	conv = conv.Append(conversation.RoleAssistant, "Let me look that up for you.")
	after := counter.Measure(conv)

	assert.Greater(t, after, before, "adding a message must not decrease the count")
}

func TestMeasureEmptyConversation(t *testing.T) {
	t.Parallel()

	counter := NewDefaultCounter()
	assert.Equal(t, 0, counter.Measure(nil))
}

func TestMeasureCountsEveryMessage(t *testing.T) {
	t.Parallel()

	counter := NewDefaultCounter()

	conv := conversation.New("system", "user")
	require.Len(t, conv, 2)

	// Two messages of framing overhead at minimum, plus content tokens.
	assert.GreaterOrEqual(t, counter.Measure(conv), 2*perMessageOverhead)
}

func TestHeuristicFallback(t *testing.T) {
	t.Parallel()

	// A counter with no codec must still measure, using chars/4.
	counter := &TiktokenCounter{}
	text := strings.Repeat("abcd", 100)
	conv := conversation.Conversation{{Role: conversation.RoleSystem, Content: text}}

	assert.Equal(t, perMessageOverhead+len(text)/4, counter.Measure(conv))
}
