package tools

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/sherlock/pkg/toolcall"
)

type echoArgs struct {
	Text string `json:"text"`
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	echo, err := NewFuncTool("echo", "echoes text back", func(_ context.Context, in echoArgs) (string, error) {
		return in.Text, nil
	})
	require.NoError(t, err)

	failing, err := NewFuncTool("failing", "always fails", func(_ context.Context, _ echoArgs) (string, error) {
		return "", errors.New("backend exploded")
	})
	require.NoError(t, err)

	type codeArgs struct {
		Code string `json:"code"`
	}
	python, err := NewFuncTool("PythonInterpreter", "runs python code", func(_ context.Context, in codeArgs) (string, error) {
		if in.Code == "" {
			return "", errors.New("no code given")
		}
		return "ran: " + in.Code, nil
	})
	require.NoError(t, err)

	panicky, err := NewFuncTool("panicky", "panics on call", func(_ context.Context, _ echoArgs) (string, error) {
		panic("boom")
	})
	require.NoError(t, err)

	reg, err := NewRegistry(echo, failing, python, panicky)
	require.NoError(t, err)
	return reg
}

func TestDispatchKnownTool(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newTestRegistry(t), "PythonInterpreter")
	res := d.Dispatch(context.Background(), &toolcall.Invocation{
		Name:      "echo",
		Arguments: map[string]any{"text": "hello"},
	})
	assert.False(t, res.IsError)
	assert.Equal(t, "hello", res.Text)
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newTestRegistry(t), "PythonInterpreter")
	res := d.Dispatch(context.Background(), &toolcall.Invocation{Name: "foo"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: Tool foo not found", res.Text)
}

func TestDispatchToolError(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newTestRegistry(t), "PythonInterpreter")
	res := d.Dispatch(context.Background(), &toolcall.Invocation{Name: "failing"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "backend exploded")
}

func TestDispatchCodeBlock(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newTestRegistry(t), "PythonInterpreter")
	res := d.Dispatch(context.Background(), &toolcall.Invocation{
		IsCodeBlock: true,
		CodeBody:    "print(42)",
	})
	assert.False(t, res.IsError)
	assert.Equal(t, "ran: print(42)", res.Text)
}

func TestDispatchCodeFailure(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newTestRegistry(t), "PythonInterpreter")
	res := d.Dispatch(context.Background(), &toolcall.Invocation{
		IsCodeBlock: true,
		CodeBody:    "",
	})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "[Python Interpreter Error]:")
}

func TestDispatchPanickingTool(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newTestRegistry(t), "PythonInterpreter")
	res := d.Dispatch(context.Background(), &toolcall.Invocation{Name: "panicky"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "panicked")
}

func TestDispatchParseError(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(newTestRegistry(t), "PythonInterpreter")
	res := d.DispatchParseError(&toolcall.ParseError{Kind: toolcall.MalformedJSON, Msg: "bad json"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "bad json")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	t.Parallel()

	echo1, err := NewFuncTool("echo", "one", func(_ context.Context, in echoArgs) (string, error) { return in.Text, nil })
	require.NoError(t, err)
	echo2, err := NewFuncTool("echo", "two", func(_ context.Context, in echoArgs) (string, error) { return in.Text, nil })
	require.NoError(t, err)

	_, err = NewRegistry(echo1, echo2)
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", Coerce("plain"))
	assert.Equal(t, "", Coerce(nil))
	assert.Equal(t, `{"n":3}`, Coerce(map[string]int{"n": 3}))
}
