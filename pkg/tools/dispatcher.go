package tools

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/sherlock/pkg/toolcall"
)

// Dispatcher routes parsed invocations to registered tools. It is a pure
// routing and formatting layer: every failure mode becomes an
// error-flagged Result, never a Go error or a panic crossing the loop
// boundary.
type Dispatcher struct {
	registry *Registry
	// codeToolName is the registered tool that executes raw code
	// bodies from <code> blocks.
	codeToolName string
}

func NewDispatcher(registry *Registry, codeToolName string) *Dispatcher {
	return &Dispatcher{registry: registry, codeToolName: codeToolName}
}

// Dispatch executes the invocation and formats its outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *toolcall.Invocation) Result {
	if inv == nil {
		return Result{Text: "Error: empty tool invocation", IsError: true}
	}
	if d.registry == nil {
		return Result{Text: fmt.Sprintf("Error: Tool %s not found", inv.Name), IsError: true}
	}
	if inv.IsCodeBlock {
		return d.dispatchCode(ctx, inv)
	}

	tool, ok := d.registry.Lookup(inv.Name)
	if !ok {
		log.Debug().Str("tool", inv.Name).Msg("tools: unknown tool requested")
		return Result{Text: fmt.Sprintf("Error: Tool %s not found", inv.Name), IsError: true}
	}

	text, err := safeInvoke(ctx, tool, inv.Arguments)
	if err != nil {
		return Result{Text: fmt.Sprintf("Error: %s", err.Error()), IsError: true}
	}
	return Result{Text: text}
}

// DispatchParseError formats a parse failure as a tool result so the
// model sees what went wrong and can emit a corrected call next round.
func (d *Dispatcher) DispatchParseError(perr *toolcall.ParseError) Result {
	return Result{Text: fmt.Sprintf("Error: %s", perr.String()), IsError: true}
}

func (d *Dispatcher) dispatchCode(ctx context.Context, inv *toolcall.Invocation) Result {
	tool, ok := d.registry.Lookup(d.codeToolName)
	if !ok {
		return Result{Text: fmt.Sprintf("Error: Tool %s not found", d.codeToolName), IsError: true}
	}
	text, err := safeInvoke(ctx, tool, map[string]any{"code": inv.CodeBody})
	if err != nil {
		return Result{Text: fmt.Sprintf("[Python Interpreter Error]: %s", err.Error()), IsError: true}
	}
	return Result{Text: text}
}

// safeInvoke shields the loop from a panicking tool.
func safeInvoke(ctx context.Context, tool Tool, args map[string]any) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", tool.Name()).Interface("panic", r).Msg("tools: tool panicked")
			err = fmt.Errorf("tool %s panicked: %v", tool.Name(), r)
		}
	}()
	return tool.Invoke(ctx, args)
}
