package runloop

import (
	"time"
)

// NoAnswerSentinel is the prediction recorded when a run terminates
// without the model ever producing an <answer> block.
const NoAnswerSentinel = "No answer found."

// RepetitionNudge is appended as a user turn when the repetition
// detector fires, before the single corrective model call.
const RepetitionNudge = `Your previous response degenerated into repetition. Stop repeating
yourself. Give your current best answer now, inside <answer>...</answer>.`

// ForcedAnswerPrompt replaces the last message when the hard token
// ceiling is breached; exactly one more model call follows it.
const ForcedAnswerPrompt = `You have reached the context limit. Do not call any more tools. Think
once more and give your final answer now, inside <answer>...</answer>.`

// Config carries every budget and knob the run loop consumes. The two
// token thresholds are deliberately independent: the working budget only
// triggers soft truncation (buying more rounds), while the hard ceiling
// forces the run to converge to an answer or a defined failure.
type Config struct {
	// MaxCalls is the tool-round budget for a single run.
	MaxCalls int
	// WorkingTokenBudget triggers soft truncation when exceeded.
	WorkingTokenBudget int
	// HardTokenCeiling forces a final answer-or-terminate exchange.
	// Must be larger than WorkingTokenBudget.
	HardTokenCeiling int
	// WarnRatio of the working budget at which usage is logged.
	WarnRatio float64
	// WallClockLimit bounds the whole run.
	WallClockLimit time.Duration
}

// DefaultConfig mirrors the budgets used for long research runs.
func DefaultConfig() Config {
	return Config{
		MaxCalls:           30,
		WorkingTokenBudget: 60000,
		HardTokenCeiling:   100000,
		WarnRatio:          0.8,
		WallClockLimit:     150 * time.Minute,
	}
}

// WithMaxCalls sets the per-run tool-call budget.
func (c Config) WithMaxCalls(n int) Config {
	c.MaxCalls = n
	return c
}

// WithTokenBudgets sets the working budget and hard ceiling together.
func (c Config) WithTokenBudgets(working, hard int) Config {
	c.WorkingTokenBudget = working
	c.HardTokenCeiling = hard
	return c
}

// WithWallClockLimit sets the per-run wall-clock ceiling.
func (c Config) WithWallClockLimit(d time.Duration) Config {
	c.WallClockLimit = d
	return c
}

// WithWarnRatio sets the usage ratio at which a warning is logged.
func (c Config) WithWarnRatio(r float64) Config {
	c.WarnRatio = r
	return c
}
