package tokens

import (
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"

	"github.com/go-go-golems/sherlock/pkg/conversation"
)

// Counter measures the size of a conversation in model tokens. Measure
// never blocks and never fails; implementations fall back to an estimate
// when exact counting is impossible.
type Counter interface {
	Measure(conv conversation.Conversation) int
}

// perMessageOverhead approximates the chat-format framing tokens that
// wrap each message (role, separators).
const perMessageOverhead = 4

// TiktokenCounter counts tokens with a tiktoken codec and falls back to a
// chars/4 estimate when the codec is missing or an encode fails.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

// NewTiktokenCounter returns a counter for the given encoding. When the
// codec cannot be constructed the counter still works, using the
// character-based estimate for every message.
func NewTiktokenCounter(encoding tokenizer.Encoding) *TiktokenCounter {
	codec, err := tokenizer.Get(encoding)
	if err != nil {
		log.Warn().Err(err).Str("encoding", string(encoding)).
			Msg("tokens: codec unavailable, falling back to character estimate")
		return &TiktokenCounter{}
	}
	return &TiktokenCounter{codec: codec}
}

// NewDefaultCounter returns a cl100k_base counter, the encoding shared by
// the GPT-3.5/4 model family.
func NewDefaultCounter() *TiktokenCounter {
	return NewTiktokenCounter(tokenizer.Cl100kBase)
}

// Measure returns the token count of the whole conversation. Adding a
// message never decreases the result: every message contributes its
// framing overhead plus a non-negative content count.
func (t *TiktokenCounter) Measure(conv conversation.Conversation) int {
	total := 0
	for _, m := range conv {
		total += perMessageOverhead + t.countText(m.Content)
	}
	return total
}

func (t *TiktokenCounter) countText(text string) int {
	if t.codec != nil {
		ids, _, err := t.codec.Encode(text)
		if err == nil {
			return len(ids)
		}
		log.Debug().Err(err).Msg("tokens: encode failed, using character estimate")
	}
	return heuristicCount(text)
}

// heuristicCount is the conservative chars/4 estimate used when no exact
// tokenizer is available.
func heuristicCount(text string) int {
	return len(text) / 4
}
