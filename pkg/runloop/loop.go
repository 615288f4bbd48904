package runloop

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/sherlock/pkg/chat"
	"github.com/go-go-golems/sherlock/pkg/conversation"
	"github.com/go-go-golems/sherlock/pkg/degen"
	"github.com/go-go-golems/sherlock/pkg/tokens"
	"github.com/go-go-golems/sherlock/pkg/toolcall"
	"github.com/go-go-golems/sherlock/pkg/tools"
	"github.com/go-go-golems/sherlock/pkg/window"
)

// Loop drives one research run: model call, repetition check, tool
// dispatch, termination, round after round. A Loop instance owns no
// state of its own between runs; each Run builds a fresh state, so a
// single Loop value is safe to reuse sequentially, and independent runs
// in parallel each get their own Loop.
type Loop struct {
	client       chat.Client
	registry     *tools.Registry
	counter      tokens.Counter
	windowMgr    *window.Manager
	detector     *degen.Detector
	cfg          Config
	systemPrompt string
	codeToolName string
}

type Option func(*Loop)

func New(opts ...Option) *Loop {
	l := &Loop{
		detector:     degen.NewDetector(),
		cfg:          DefaultConfig(),
		codeToolName: "python",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.counter == nil {
		l.counter = tokens.NewDefaultCounter()
	}
	l.windowMgr = window.NewManager(l.counter)
	return l
}

func WithClient(c chat.Client) Option {
	return func(l *Loop) { l.client = c }
}

func WithRegistry(r *tools.Registry) Option {
	return func(l *Loop) { l.registry = r }
}

func WithCounter(c tokens.Counter) Option {
	return func(l *Loop) { l.counter = c }
}

func WithDetector(d *degen.Detector) Option {
	return func(l *Loop) { l.detector = d }
}

func WithConfig(cfg Config) Option {
	return func(l *Loop) { l.cfg = cfg }
}

func WithSystemPrompt(prompt string) Option {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// WithCodeToolName sets the registered tool that executes <code> blocks.
func WithCodeToolName(name string) Option {
	return func(l *Loop) { l.codeToolName = name }
}

// state is the mutable per-run record. Created at run start, mutated in
// place each round, discarded once the Result is assembled.
type state struct {
	runID          string
	conv           conversation.Conversation
	round          int
	callsRemaining int
	start          time.Time
	lastTokens     int
	prediction     string
}

// Run executes the full control loop for one question. It always
// returns a well-formed Result; no error escapes the orchestrator.
func (l *Loop) Run(ctx context.Context, question string) *Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if l.client == nil {
		return &Result{
			RunID:       uuid.New().String(),
			Question:    question,
			Prediction:  NoAnswerSentinel,
			Termination: ModelUnavailable,
			Err:         "run loop has no model client",
		}
	}

	st := &state{
		runID:          uuid.New().String(),
		conv:           conversation.New(l.systemPrompt, question),
		callsRemaining: l.cfg.MaxCalls,
		start:          time.Now(),
	}

	logger := log.With().Str("run_id", st.runID).Logger()
	logger.Info().Str("question", question).Int("max_calls", l.cfg.MaxCalls).Msg("runloop: starting run")

	parser := toolcall.NewParser(l.codeToolName)
	dispatcher := tools.NewDispatcher(l.registry, l.codeToolName)

	var termination Termination
	var runErr error

	for {
		// Step 1: wall clock and coarse cancellation, checked only
		// between rounds. An in-flight call must finish on its own.
		if ctx.Err() != nil || time.Since(st.start) > l.cfg.WallClockLimit {
			logger.Warn().Int("round", st.round).Dur("elapsed", time.Since(st.start)).
				Msg("runloop: wall clock exceeded")
			termination = WallClockExceeded
			break
		}

		// Step 2: call budget. An answer already present in the prior
		// assistant turn wins over the budget.
		if st.callsRemaining <= 0 {
			if answer, ok := toolcall.ExtractAnswer(lastAssistant(st.conv)); ok {
				st.prediction = answer
				termination = Answered
			} else {
				termination = CallBudgetExceeded
			}
			break
		}
		st.callsRemaining--
		st.round++

		// Step 3: soft truncation against the working budget.
		st.lastTokens = l.counter.Measure(st.conv)
		if float64(st.lastTokens) > float64(l.cfg.WorkingTokenBudget)*l.cfg.WarnRatio {
			logger.Info().Int("tokens", st.lastTokens).Int("budget", l.cfg.WorkingTokenBudget).
				Msg("runloop: approaching working token budget")
		}
		st.conv = l.windowMgr.Enforce(st.conv, l.cfg.WorkingTokenBudget)

		// Step 4: model call.
		text, err := l.client.Complete(ctx, st.conv)
		if err != nil {
			logger.Error().Err(err).Int("round", st.round).Msg("runloop: model unavailable")
			termination = ModelUnavailable
			runErr = err
			break
		}

		// Step 5: one-shot corrective retry on degenerate output.
		if l.detector.IsDegenerate(text) {
			logger.Warn().Int("round", st.round).Msg("runloop: degenerate response, forcing corrective call")
			st.conv = st.conv.Append(conversation.RoleUser, RepetitionNudge)
			text, err = l.client.Complete(ctx, st.conv)
			if err != nil {
				termination = ModelUnavailable
				runErr = err
				break
			}
		}

		// Step 6: discard hallucinated tool output, then record the
		// assistant turn.
		text = toolcall.CutHallucinatedResponse(text)
		st.conv = st.conv.Append(conversation.RoleAssistant, text)

		// Step 7: tool dispatch.
		if toolcall.HasToolCall(text) {
			inv, perr := parser.Parse(text)
			var result tools.Result
			if perr != nil {
				result = dispatcher.DispatchParseError(perr)
			} else {
				result = dispatcher.Dispatch(ctx, inv)
			}
			logger.Debug().Int("round", st.round).Bool("is_error", result.IsError).
				Msg("runloop: tool dispatched")
			st.conv = st.conv.Append(conversation.RoleUser, toolcall.WrapToolResponse(result.Text))
		}

		// Step 8: explicit answer.
		if answer, ok := toolcall.ExtractAnswer(text); ok {
			st.prediction = answer
			termination = Answered
			break
		}

		// Step 9: hard ceiling. One forced exchange, then stop no
		// matter what it contains.
		if l.counter.Measure(st.conv) > l.cfg.HardTokenCeiling {
			logger.Warn().Int("round", st.round).Msg("runloop: hard token ceiling breached, forcing final answer")
			l.forceFinalAnswer(ctx, st)
			termination = TokenBudgetExceeded
			break
		}
	}

	return l.assembleResult(st, question, termination, runErr)
}

// forceFinalAnswer delivers the forced-answer instruction as a user
// turn and performs exactly one more model call. Whatever comes back is
// the best-effort prediction; the termination reason stays with the
// triggering condition.
func (l *Loop) forceFinalAnswer(ctx context.Context, st *state) {
	// After a tool dispatch the last message is the tool response, which
	// the instruction replaces. When the round had no tool call the last
	// message is the assistant's own turn and must stay intact.
	if len(st.conv) > 0 && st.conv[len(st.conv)-1].Role == conversation.RoleUser {
		st.conv = st.conv.ReplaceLast(ForcedAnswerPrompt)
	} else {
		st.conv = st.conv.Append(conversation.RoleUser, ForcedAnswerPrompt)
	}

	text, err := l.client.Complete(ctx, st.conv)
	if err != nil {
		return
	}
	text = toolcall.CutHallucinatedResponse(text)
	st.conv = st.conv.Append(conversation.RoleAssistant, text)

	if answer, ok := toolcall.ExtractAnswer(text); ok {
		st.prediction = answer
	} else {
		st.prediction = text
	}
}

// lastAssistant returns the content of the most recent assistant turn.
func lastAssistant(conv conversation.Conversation) string {
	for i := len(conv) - 1; i >= 0; i-- {
		if conv[i].Role == conversation.RoleAssistant {
			return conv[i].Content
		}
	}
	return ""
}

func (l *Loop) assembleResult(st *state, question string, termination Termination, runErr error) *Result {
	prediction := st.prediction
	if prediction == "" {
		prediction = NoAnswerSentinel
	}

	res := &Result{
		RunID:        st.runID,
		Question:     question,
		Conversation: st.conv,
		Prediction:   prediction,
		Termination:  termination,
	}
	if runErr != nil {
		res.Err = runErr.Error()
	}

	log.Info().
		Str("run_id", st.runID).
		Int("rounds", st.round).
		Str("termination", termination.String()).
		Msg("runloop: run finished")
	return res
}
