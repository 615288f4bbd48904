package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-go-golems/sherlock/pkg/tools"
)

// DefaultInstructions is the research-agent system prompt scaffold. The
// tool protocol below has to match the markers the parser understands.
const DefaultInstructions = `You are a deep research assistant. You answer the user's question by
iteratively calling the tools listed below and reasoning over their
results.

To call a tool, emit exactly one block of the form:
<tool_call>{"name": "<tool name>", "arguments": {...}}</tool_call>

For the code interpreter, leave arguments empty and put the program in a
code block immediately after:
<tool_call>{"name": "PythonInterpreter", "arguments": {}}</tool_call>
<code>
...
</code>

Tool output is returned to you inside <tool_response>...</tool_response>.
Never write a <tool_response> block yourself.

When you have gathered enough evidence, stop calling tools and give your
final answer inside <answer>...</answer>. You may reason inside
<think>...</think> at any point.`

// BuildSystemPrompt renders the full system prompt: instructions, the
// tool catalog with JSON schemas, and the current date.
func BuildSystemPrompt(registry *tools.Registry, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(DefaultInstructions)
	sb.WriteString("\n\n# Available tools\n")

	for _, t := range registry.List() {
		sb.WriteString(fmt.Sprintf("\n## %s\n%s\n", t.Name(), t.Description()))
		if schema := t.Schema(); schema != nil {
			if b, err := json.Marshal(schema); err == nil {
				sb.WriteString("Arguments schema: ")
				sb.Write(b)
				sb.WriteString("\n")
			}
		}
	}

	sb.WriteString(fmt.Sprintf("\nCurrent date: %s\n", now.Format("2006-01-02")))
	return sb.String()
}
