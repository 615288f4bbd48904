package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Tool is an external capability the model can invoke. The orchestrator
// depends only on this interface; concrete tools (search, fetch, code
// execution) live behind it.
type Tool interface {
	Name() string
	Description() string
	Schema() *jsonschema.Schema
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Result is what a dispatch produces. IsError results are still shown to
// the model as ordinary conversation content so it can self-correct.
type Result struct {
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

// FuncTool adapts a typed Go function to the Tool interface, reflecting
// a JSON schema from its argument struct.
type FuncTool struct {
	name        string
	description string
	schema      *jsonschema.Schema
	invoke      func(ctx context.Context, args map[string]any) (string, error)
}

// NewFuncTool builds a Tool from fn, which must have the signature
// func(context.Context, Args) (string, error) for a struct type Args.
func NewFuncTool(name, description string, fn any) (*FuncTool, error) {
	fnType := reflect.TypeOf(fn)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, errors.New("tool function must be a func")
	}
	ctxType := reflect.TypeOf((*context.Context)(nil)).Elem()
	errType := reflect.TypeOf((*error)(nil)).Elem()
	if fnType.NumIn() != 2 || fnType.In(0) != ctxType {
		return nil, errors.Errorf("tool %s: function must take (context.Context, Args)", name)
	}
	if fnType.NumOut() != 2 || fnType.Out(0).Kind() != reflect.String || !fnType.Out(1).Implements(errType) {
		return nil, errors.Errorf("tool %s: function must return (string, error)", name)
	}

	argType := fnType.In(1)
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(reflect.New(argType).Elem().Interface())
	if schema.Type == "" {
		schema.Type = "object"
	}

	fnValue := reflect.ValueOf(fn)
	invoke := func(ctx context.Context, args map[string]any) (string, error) {
		raw, err := json.Marshal(args)
		if err != nil {
			return "", errors.Wrap(err, "marshal arguments")
		}
		argsValue := reflect.New(argType)
		if err := json.Unmarshal(raw, argsValue.Interface()); err != nil {
			return "", errors.Wrap(err, "unmarshal arguments")
		}
		out := fnValue.Call([]reflect.Value{reflect.ValueOf(ctx), argsValue.Elem()})
		text := out[0].String()
		if errVal := out[1].Interface(); errVal != nil {
			return text, errVal.(error)
		}
		return text, nil
	}

	return &FuncTool{
		name:        name,
		description: description,
		schema:      schema,
		invoke:      invoke,
	}, nil
}

func (t *FuncTool) Name() string               { return t.name }
func (t *FuncTool) Description() string        { return t.description }
func (t *FuncTool) Schema() *jsonschema.Schema { return t.schema }

func (t *FuncTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	return t.invoke(ctx, args)
}

var _ Tool = (*FuncTool)(nil)

// Coerce renders an arbitrary tool return value as text for the model.
func Coerce(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
