package runloop

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/go-go-golems/sherlock/pkg/conversation"
)

// Termination enumerates why a run stopped producing rounds. Budget
// terminations are expected outcomes with a defined prediction fallback,
// not errors; only ModelUnavailable populates Result.Err.
type Termination int

const (
	Answered Termination = iota
	CallBudgetExceeded
	TokenBudgetExceeded
	WallClockExceeded
	ModelUnavailable
)

var terminationNames = map[Termination]string{
	Answered:            "answered",
	CallBudgetExceeded:  "call_budget_exceeded",
	TokenBudgetExceeded: "token_budget_exceeded",
	WallClockExceeded:   "wall_clock_exceeded",
	ModelUnavailable:    "model_unavailable",
}

func (t Termination) String() string {
	if name, ok := terminationNames[t]; ok {
		return name
	}
	return "unknown"
}

func (t Termination) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Termination) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for k, v := range terminationNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return errors.Errorf("unknown termination: %s", s)
}

// Result is the single artifact a run surfaces to its caller. It is
// produced exactly once and never mutated afterwards.
type Result struct {
	RunID        string                    `json:"run_id"`
	Question     string                    `json:"question"`
	Answer       string                    `json:"answer"`
	Conversation conversation.Conversation `json:"messages"`
	Prediction   string                    `json:"prediction"`
	Termination  Termination               `json:"termination"`
	Err          string                    `json:"error,omitempty"`
}
