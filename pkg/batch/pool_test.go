package batch

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/sherlock/pkg/conversation"
	"github.com/go-go-golems/sherlock/pkg/runloop"
	"github.com/go-go-golems/sherlock/pkg/tools"
)

// answeringModel echoes the question back inside an answer block and
// tracks the peak number of concurrent calls.
type answeringModel struct {
	mu      sync.Mutex
	active  int
	peak    int
	started atomic.Int64
}

func (m *answeringModel) Complete(_ context.Context, conv conversation.Conversation) (string, error) {
	m.started.Add(1)
	m.mu.Lock()
	m.active++
	if m.active > m.peak {
		m.peak = m.active
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	question := ""
	for _, msg := range conv {
		if msg.Role == conversation.RoleUser {
			question = msg.Content
			break
		}
	}
	return fmt.Sprintf("<answer>%s</answer>", question), nil
}

func newFactory(model *answeringModel) LoopFactory {
	reg, _ := tools.NewRegistry()
	return func() *runloop.Loop {
		return runloop.New(
			runloop.WithClient(model),
			runloop.WithRegistry(reg),
			runloop.WithSystemPrompt("test"),
		)
	}
}

func TestPoolPreservesTaskOrder(t *testing.T) {
	t.Parallel()

	model := &answeringModel{}
	p := NewPool(newFactory(model), 4)

	var tasks []Task
	for i := 0; i < 10; i++ {
		tasks = append(tasks, Task{Question: fmt.Sprintf("q-%d", i), Answer: fmt.Sprintf("gold-%d", i)})
	}

	results := p.Run(context.Background(), tasks)
	require.Len(t, results, 10)
	for i, res := range results {
		require.NotNil(t, res, "result %d", i)
		assert.Equal(t, fmt.Sprintf("q-%d", i), res.Question)
		assert.Equal(t, fmt.Sprintf("q-%d", i), res.Prediction)
		assert.Equal(t, fmt.Sprintf("gold-%d", i), res.Answer)
		assert.Equal(t, runloop.Answered, res.Termination)
	}
}

func TestPoolRespectsWorkerLimit(t *testing.T) {
	t.Parallel()

	model := &answeringModel{}
	p := NewPool(newFactory(model), 2)

	var tasks []Task
	for i := 0; i < 12; i++ {
		tasks = append(tasks, Task{Question: fmt.Sprintf("q-%d", i)})
	}
	p.Run(context.Background(), tasks)

	assert.EqualValues(t, 12, model.started.Load())
	assert.LessOrEqual(t, model.peak, 2, "never more than `workers` concurrent runs")
}

func TestWriteResultsJSONL(t *testing.T) {
	t.Parallel()

	model := &answeringModel{}
	p := NewPool(newFactory(model), 1)
	results := p.Run(context.Background(), []Task{{Question: "what is up"}})

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"question":"what is up"`)
	assert.Contains(t, lines[0], `"termination":"answered"`)
}
