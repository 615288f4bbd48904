package toolcall

import "strings"

// Wire-format markers embedded in model text. The lexer below is the
// only place these literals are handled, so the wire format can change
// without touching the run loop.
const (
	ToolCallOpen      = "<tool_call>"
	ToolCallClose     = "</tool_call>"
	ToolResponseOpen  = "<tool_response>"
	ToolResponseClose = "</tool_response>"
	CodeOpen          = "<code>"
	CodeClose         = "</code>"
	AnswerOpen        = "<answer>"
	AnswerClose       = "</answer>"
)

// extractSpan returns the text between the first open/close marker pair.
// ok is false when the opening marker is missing; a missing closing
// marker yields the rest of the text with ok true, matching how models
// commonly drop the final tag.
func extractSpan(text, open, close string) (span string, ok bool) {
	start := strings.Index(text, open)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(open):]
	end := strings.Index(rest, close)
	if end < 0 {
		return rest, true
	}
	return rest[:end], true
}

// HasToolCall reports whether the text contains a tool-call marker.
func HasToolCall(text string) bool {
	return strings.Contains(text, ToolCallOpen)
}

// ExtractAnswer returns the contents of the first <answer> span.
func ExtractAnswer(text string) (string, bool) {
	span, ok := extractSpan(text, AnswerOpen, AnswerClose)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(span), true
}

// CutHallucinatedResponse drops everything from the first
// <tool_response> marker onward. A model that emits this marker is
// inventing its own tool output, and nothing after it can be trusted.
func CutHallucinatedResponse(text string) string {
	if i := strings.Index(text, ToolResponseOpen); i >= 0 {
		return strings.TrimRight(text[:i], " \n\t")
	}
	return text
}

// WrapToolResponse formats a tool result for appending to the
// conversation as a user turn.
func WrapToolResponse(result string) string {
	return ToolResponseOpen + "\n" + result + "\n" + ToolResponseClose
}
