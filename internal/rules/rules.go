package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dlclark/regexp2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/wtp"
	"github.com/gnolang/wtp/internal/nofix"
)

// Rule rewrites one argument of every template whose name matches Template.
// Exactly one of Rename, Value and Positional is set.
type Rule struct {
	Name       string  `yaml:"name"`
	Template   string  `yaml:"template"`
	Argument   string  `yaml:"argument"`
	Rename     string  `yaml:"rename,omitempty"`
	Value      *string `yaml:"value,omitempty"`
	Positional bool    `yaml:"positional,omitempty"`

	pattern *regexp2.Regexp
}

// Config is the layout of a rules file.
type Config struct {
	Rules []Rule `yaml:"rules"`
}

// Change describes one edit made by a rule.
type Change struct {
	Rule     string `json:"rule"`
	Template string `json:"template"`
	Argument string `json:"argument"`
	Offset   int    `json:"offset"`
	Before   string `json:"before"`
	After    string `json:"after"`
}

var errInvalidRule = errors.New("invalid rule")

// Load reads and validates the rules in the YAML file at path.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates YAML rules.
func Parse(data []byte) ([]Rule, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	for i := range cfg.Rules {
		if err := cfg.Rules[i].compile(); err != nil {
			return nil, err
		}
	}
	return cfg.Rules, nil
}

func (r *Rule) compile() error {
	label := r.Name
	if label == "" {
		label = r.Template + "/" + r.Argument
	}
	if r.Template == "" || strings.TrimSpace(r.Argument) == "" {
		return fmt.Errorf("%w %q: template and argument are required", errInvalidRule, label)
	}

	actions := 0
	if r.Rename != "" {
		actions++
	}
	if r.Value != nil {
		actions++
	}
	if r.Positional {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("%w %q: exactly one of rename, value or positional must be set", errInvalidRule, label)
	}

	re, err := regexp2.Compile(`^(?:`+r.Template+`)$`, regexp2.None)
	if err != nil {
		return fmt.Errorf("%w %q: %v", errInvalidRule, label, err)
	}
	r.pattern = re
	return nil
}

// Matches reports whether the whole of name matches the template pattern.
func (r *Rule) Matches(name string) (bool, error) {
	if r.pattern == nil {
		if err := r.compile(); err != nil {
			return false, err
		}
	}
	return r.pattern.MatchString(strings.TrimSpace(name))
}

// matchesTemplate tries the name as written, then its normalized form.
func (r *Rule) matchesTemplate(tpl *wtp.Template) (bool, error) {
	ok, err := r.Matches(tpl.Name())
	if err != nil || ok {
		return ok, err
	}
	return r.Matches(tpl.NormalName())
}

// Apply runs rules over every template of doc in order and returns the
// changes made. A rule that cannot be applied to one template does not stop
// the others; all such failures are returned together. Templates marked with
// a <!-- wtp:nofix --> comment are left alone.
func Apply(doc *wtp.Document, rules []Rule) ([]Change, error) {
	var (
		changes []Change
		errs    error
	)
	skip := nofix.ParseComments(doc)
	for i := range rules {
		rule := &rules[i]
		for _, tpl := range doc.Templates() {
			if tpl.Span().Closed() {
				// removed by an earlier edit
				continue
			}
			ok, err := rule.matchesTemplate(tpl)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("rule %q: %w", rule.Name, err))
				break
			}
			if !ok || skip.IsNofix(tpl, rule.Name) {
				continue
			}
			change, err := rule.apply(tpl)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("rule %q on %s at %d: %w", rule.Name, tpl.Name(), tpl.Span().Start, err))
				continue
			}
			if change != nil {
				changes = append(changes, *change)
			}
		}
	}
	return changes, errs
}

// apply edits the matching argument of tpl. It returns nil when the argument
// is missing or already in the wanted state.
func (r *Rule) apply(tpl *wtp.Template) (*Change, error) {
	arg := tpl.Argument(r.Argument)
	if arg == nil {
		return nil, nil
	}
	change := &Change{
		Rule:     r.Name,
		Template: tpl.Name(),
		Argument: strings.TrimSpace(arg.Name()),
		Offset:   arg.Span().Start,
		Before:   arg.String(),
	}

	var err error
	switch {
	case r.Rename != "":
		if strings.TrimSpace(arg.Name()) == r.Rename && !arg.Positional() {
			return nil, nil
		}
		err = arg.SetName(r.Rename)
	case r.Value != nil:
		if arg.Value() == *r.Value {
			return nil, nil
		}
		err = arg.SetValue(*r.Value)
	case r.Positional:
		if arg.Positional() {
			return nil, nil
		}
		err = arg.SetPositional(true)
	}
	if err != nil {
		return nil, err
	}
	change.After = arg.String()
	return change, nil
}
