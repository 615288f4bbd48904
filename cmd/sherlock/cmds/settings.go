package cmds

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/go-go-golems/sherlock/pkg/chat"
	"github.com/go-go-golems/sherlock/pkg/profiles"
	"github.com/go-go-golems/sherlock/pkg/prompts"
	"github.com/go-go-golems/sherlock/pkg/runloop"
	"github.com/go-go-golems/sherlock/pkg/toolkit"
	"github.com/go-go-golems/sherlock/pkg/tools"
)

// Settings is the merged run configuration: defaults, then the yaml
// profile, then flags/env (which viper already resolved).
type Settings struct {
	Model          string
	BaseURL        string
	APIKey         string
	SystemPrompt   string
	CodeToolName   string
	MaxCalls       int
	WorkingBudget  int
	HardCeiling    int
	WallClock      time.Duration
	MaxRetries     int
	RequestTimeout time.Duration
	Workers        int
}

func settingsFromViper() (*Settings, error) {
	s := &Settings{
		Model:          viper.GetString("model"),
		BaseURL:        viper.GetString("base-url"),
		APIKey:         viper.GetString("api-key"),
		CodeToolName:   viper.GetString("code-tool"),
		MaxCalls:       viper.GetInt("max-calls"),
		WorkingBudget:  viper.GetInt("working-token-budget"),
		HardCeiling:    viper.GetInt("hard-token-ceiling"),
		WallClock:      viper.GetDuration("wall-clock-limit"),
		MaxRetries:     viper.GetInt("max-retries"),
		RequestTimeout: viper.GetDuration("request-timeout"),
		Workers:        viper.GetInt("workers"),
	}

	if path := viper.GetString("profile"); path != "" {
		p, err := profiles.Load(path)
		if err != nil {
			return nil, err
		}
		s.applyProfile(p)
	}

	if s.Model == "" {
		return nil, errors.New("no model configured (--model or SHERLOCK_MODEL)")
	}
	return s, nil
}

// applyProfile fills in profile values where flags kept their zero
// defaults untouched by the user. Explicit flags win, mirroring how
// viper layers sources.
func (s *Settings) applyProfile(p *profiles.Profile) {
	if p.Model != "" && !viper.IsSet("model") {
		s.Model = p.Model
	}
	if p.BaseURL != "" && !viper.IsSet("base-url") {
		s.BaseURL = p.BaseURL
	}
	if p.SystemPrompt != "" {
		s.SystemPrompt = p.SystemPrompt
	}
	if p.CodeToolName != "" && !viper.IsSet("code-tool") {
		s.CodeToolName = p.CodeToolName
	}
	if p.MaxCalls > 0 && !viper.IsSet("max-calls") {
		s.MaxCalls = p.MaxCalls
	}
	if p.WorkingBudget > 0 && !viper.IsSet("working-token-budget") {
		s.WorkingBudget = p.WorkingBudget
	}
	if p.HardCeiling > 0 && !viper.IsSet("hard-token-ceiling") {
		s.HardCeiling = p.HardCeiling
	}
	if p.WallClock > 0 && !viper.IsSet("wall-clock-limit") {
		s.WallClock = p.WallClock.Std()
	}
	if p.MaxRetries > 0 && !viper.IsSet("max-retries") {
		s.MaxRetries = p.MaxRetries
	}
	if p.Workers > 0 && !viper.IsSet("workers") {
		s.Workers = p.Workers
	}
}

func (s *Settings) buildRegistry() (*tools.Registry, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	search, err := toolkit.NewSearchTool(httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "build search tool")
	}
	visit, err := toolkit.NewVisitTool(httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "build visit tool")
	}
	return tools.NewRegistry(search, visit)
}

func (s *Settings) buildLoop(registry *tools.Registry) *runloop.Loop {
	client := chat.NewRetry(
		chat.NewOpenAIClient(s.APIKey, s.BaseURL, s.Model,
			chat.WithRequestTimeout(s.RequestTimeout)),
		chat.RetryConfig{
			MaxRetries: s.MaxRetries,
			BaseSleep:  1 * time.Second,
			MaxSleep:   60 * time.Second,
		},
	)

	systemPrompt := s.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = prompts.BuildSystemPrompt(registry, time.Now())
	}

	cfg := runloop.DefaultConfig().
		WithMaxCalls(s.MaxCalls).
		WithTokenBudgets(s.WorkingBudget, s.HardCeiling).
		WithWallClockLimit(s.WallClock)

	return runloop.New(
		runloop.WithClient(client),
		runloop.WithRegistry(registry),
		runloop.WithConfig(cfg),
		runloop.WithSystemPrompt(systemPrompt),
		runloop.WithCodeToolName(s.CodeToolName),
	)
}
