package batch

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/sherlock/pkg/runloop"
)

// Task is one question to research, optionally with a reference answer
// carried through to the output record for later scoring.
type Task struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

// LoopFactory builds a fresh Loop per run. Each run must own its client
// and state, so the pool never shares a Loop between workers.
type LoopFactory func() *runloop.Loop

// Pool runs independent research tasks with bounded parallelism.
// Concurrency exists only across runs; each run stays single-threaded.
type Pool struct {
	factory LoopFactory
	workers int
}

func NewPool(factory LoopFactory, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{factory: factory, workers: workers}
}

// Run executes all tasks and returns results in task order. Every run
// yields a well-formed result, so the only group error is context
// cancellation propagated between runs.
func (p *Pool) Run(ctx context.Context, tasks []Task) []*runloop.Result {
	results := make([]*runloop.Result, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			loop := p.factory()
			res := loop.Run(gctx, task.Question)
			res.Answer = task.Answer
			results[i] = res
			return nil
		})
	}

	// Workers never return errors; Wait only observes cancellation.
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("batch: pool interrupted")
	}
	return results
}

// WriteResults emits one JSON record per line, the per-run output
// format.
func WriteResults(w io.Writer, results []*runloop.Result) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		if res == nil {
			continue
		}
		if err := enc.Encode(res); err != nil {
			return errors.Wrap(err, "encode result")
		}
	}
	return nil
}
