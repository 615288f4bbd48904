package toolcall

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/jsonc"
)

// Invocation is the parsed form of a <tool_call> span. Name and
// Arguments are populated for JSON calls; CodeBody for code-execution
// calls.
type Invocation struct {
	Raw         string
	Name        string
	Arguments   map[string]any
	IsCodeBlock bool
	CodeBody    string
}

// ParseErrorKind classifies why a tool-call span could not be decoded.
type ParseErrorKind int

const (
	MalformedJSON ParseErrorKind = iota
	MissingFields
	UnknownMarker
)

func (k ParseErrorKind) String() string {
	switch k {
	case MalformedJSON:
		return "malformed-json"
	case MissingFields:
		return "missing-fields"
	case UnknownMarker:
		return "unknown-marker"
	}
	return "unknown"
}

// ParseError is a value, not a Go error: the dispatcher converts it into
// an error-flagged tool result shown back to the model, so the loop
// never throws on bad model output.
type ParseError struct {
	Kind ParseErrorKind
	Raw  string
	Msg  string
}

func (e *ParseError) String() string {
	return fmt.Sprintf("tool call parse error [%s]: %s", e.Kind, e.Msg)
}

// Parser extracts tool invocations from free-form model text.
type Parser struct {
	// codeToolName marks code-execution calls: a span whose name
	// contains this (case-insensitively) carries its payload in a
	// <code> block rather than in JSON arguments.
	codeToolName string
}

func NewParser(codeToolName string) *Parser {
	return &Parser{codeToolName: strings.ToLower(codeToolName)}
}

// Parse locates the first <tool_call> span and decodes it. It returns
// (nil, nil) when the text contains no tool call at all. Hallucinated
// <tool_response> content is discarded before extraction.
func (p *Parser) Parse(text string) (*Invocation, *ParseError) {
	text = CutHallucinatedResponse(text)

	span, ok := extractSpan(text, ToolCallOpen, ToolCallClose)
	if !ok {
		return nil, nil
	}
	span = strings.TrimSpace(span)
	if span == "" {
		return nil, &ParseError{Kind: MissingFields, Raw: span, Msg: "empty tool call"}
	}

	if p.isCodeCall(span) {
		body, found := extractSpan(text, CodeOpen, CodeClose)
		if !found {
			return nil, &ParseError{Kind: UnknownMarker, Raw: span, Msg: "code tool call without a <code> block"}
		}
		name := p.codeToolName
		if decoded := decodeName(span); decoded != "" {
			name = decoded
		}
		return &Invocation{
			Raw:         span,
			Name:        name,
			IsCodeBlock: true,
			CodeBody:    body,
		}, nil
	}

	var payload struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	// Models drift into JSON5 habits (trailing commas, comments); clean
	// the span up before strict decoding.
	cleaned := jsonc.ToJSON([]byte(span))
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		return nil, &ParseError{Kind: MalformedJSON, Raw: span, Msg: err.Error()}
	}
	if payload.Name == "" {
		return nil, &ParseError{Kind: MissingFields, Raw: span, Msg: "tool call has no name"}
	}
	return &Invocation{
		Raw:       span,
		Name:      payload.Name,
		Arguments: payload.Arguments,
	}, nil
}

// isCodeCall decides whether a span routes to the code-execution path.
// The match runs against the decoded name field, so a search call whose
// arguments merely mention the code tool stays a plain JSON call. Only
// when no name decodes (code calls are often bare or non-JSON) does the
// whole span get matched.
func (p *Parser) isCodeCall(span string) bool {
	if p.codeToolName == "" {
		return false
	}
	if name := decodeName(span); name != "" {
		return strings.Contains(strings.ToLower(name), p.codeToolName)
	}
	return strings.Contains(strings.ToLower(span), p.codeToolName)
}

// decodeName best-effort extracts the name field from a span; used to
// keep the registered tool name exact for code-block calls.
func decodeName(span string) string {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(jsonc.ToJSON([]byte(span)), &payload); err != nil {
		return ""
	}
	return payload.Name
}
