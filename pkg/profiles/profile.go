package profiles

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so profiles can write "30m" or "2h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "parse duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Profile is the on-disk agent configuration. All fields are optional;
// zero values defer to flags and built-in defaults.
type Profile struct {
	Model         string   `yaml:"model"`
	BaseURL       string   `yaml:"base_url"`
	SystemPrompt  string   `yaml:"system_prompt"`
	CodeToolName  string   `yaml:"code_tool_name"`
	MaxCalls      int      `yaml:"max_calls"`
	WorkingBudget int      `yaml:"working_token_budget"`
	HardCeiling   int      `yaml:"hard_token_ceiling"`
	WallClock     Duration `yaml:"wall_clock_limit"`
	MaxRetries    int      `yaml:"max_retries"`
	Workers       int      `yaml:"workers"`
}

// Load reads a yaml profile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profile %s", path)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrapf(err, "parse profile %s", path)
	}
	return &p, nil
}
