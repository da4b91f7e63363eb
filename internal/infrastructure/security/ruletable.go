package security

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/aiterm/assets"
	"github.com/doeshing/aiterm/internal/domain"
	"github.com/doeshing/aiterm/internal/infrastructure/dialect"
	"github.com/doeshing/aiterm/internal/pkg/filesystem"
)

// RuleTableVersion is the schema version this build understands.
const RuleTableVersion = 1

// EmbeddedSource names the compiled-in default table.
const EmbeddedSource = "embedded defaults"

// Rule is one declarative entry of the rule table.
type Rule struct {
	ID               string   `yaml:"id"`
	Level            string   `yaml:"level"`
	Intent           string   `yaml:"intent"`
	Programs         []string `yaml:"programs,omitempty"`
	Subcommands      []string `yaml:"subcommands,omitempty"`
	Modifiers        []string `yaml:"modifiers,omitempty"`
	ExcludeModifiers []string `yaml:"exclude_modifiers,omitempty"`
	Targets          []string `yaml:"targets,omitempty"`
	Redirects        []string `yaml:"redirects,omitempty"`
	Upstream         string   `yaml:"upstream,omitempty"`
	Elevated         *bool    `yaml:"elevated,omitempty"`
	Pattern          string   `yaml:"pattern,omitempty"`
	Reason           string   `yaml:"reason"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Version       int                 `yaml:"version"`
	TargetClasses map[string][]string `yaml:"target_classes"`
	Rules         []Rule              `yaml:"rules"`
}

type compiledRule struct {
	Rule
	level   domain.RiskLevel
	pattern *regexp.Regexp
	reason  *template.Template
}

// RuleTable is a validated rule table sorted by descending severity.
// It is never modified after load.
type RuleTable struct {
	source        string
	targetClasses map[string][]string
	rules         []compiledRule
}

// LoadRuleTable reads the table at path. An empty path or a missing file
// yields the embedded defaults; a present but invalid file is an error.
func LoadRuleTable(path string) (*RuleTable, error) {
	path = filesystem.ExpandPath(path)
	if path == "" {
		return DefaultRuleTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultRuleTable()
		}
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	return ParseRuleTable(data, path)
}

// DefaultRuleTable parses the embedded rule table.
func DefaultRuleTable() (*RuleTable, error) {
	return ParseRuleTable(assets.DefaultRulesYAML, EmbeddedSource)
}

// ParseRuleTable decodes and validates a table. Every problem found is
// reported, joined into one error.
func ParseRuleTable(data []byte, source string) (*RuleTable, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule table %s: %w", source, err)
	}

	var problems []error
	if file.Version != RuleTableVersion {
		problems = append(problems, fmt.Errorf("unsupported version %d (want %d)", file.Version, RuleTableVersion))
	}

	known := map[string]bool{domain.TargetWildcard: true, domain.TargetOther: true}
	for name, patterns := range file.TargetClasses {
		if name == domain.TargetWildcard || name == domain.TargetOther {
			problems = append(problems, fmt.Errorf("target class %q is built in", name))
		}
		if bad, ok := dialect.ValidatePatterns(patterns); !ok {
			problems = append(problems, fmt.Errorf("target class %q: invalid glob %q", name, bad))
		}
		known[name] = true
	}

	seen := map[string]bool{}
	compiled := make([]compiledRule, 0, len(file.Rules))
	for i, rule := range file.Rules {
		rule = normalizeRule(rule)
		c, errs := compileRule(rule, known)
		if rule.ID != "" && seen[rule.ID] {
			errs = append(errs, errors.New("duplicate id"))
		}
		seen[rule.ID] = true
		for _, err := range errs {
			label := rule.ID
			if label == "" {
				label = fmt.Sprintf("#%d", i+1)
			}
			problems = append(problems, fmt.Errorf("rule %s: %w", label, err))
		}
		compiled = append(compiled, c)
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid rule table %s: %w", source, errors.Join(problems...))
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].level.MoreSevere(compiled[j].level)
	})
	return &RuleTable{source: source, targetClasses: file.TargetClasses, rules: compiled}, nil
}

func normalizeRule(rule Rule) Rule {
	rule.ID = strings.TrimSpace(rule.ID)
	rule.Intent = strings.TrimSpace(rule.Intent)
	rule.Programs = lowerAll(rule.Programs)
	rule.Subcommands = lowerAll(rule.Subcommands)
	return rule
}

func compileRule(rule Rule, classes map[string]bool) (compiledRule, []error) {
	out := compiledRule{Rule: rule}
	var errs []error

	if rule.ID == "" {
		errs = append(errs, errors.New("missing id"))
	}
	level, err := domain.ParseRiskLevel(rule.Level)
	if err != nil {
		errs = append(errs, err)
	}
	out.level = level

	if rule.Intent != "*" && !domain.KnownIntent(rule.Intent) {
		errs = append(errs, fmt.Errorf("unknown intent %q", rule.Intent))
	}
	if rule.Upstream != "" && !domain.KnownIntent(rule.Upstream) {
		errs = append(errs, fmt.Errorf("unknown upstream intent %q", rule.Upstream))
	}
	for _, class := range append(append([]string{}, rule.Targets...), rule.Redirects...) {
		if !classes[class] {
			errs = append(errs, fmt.Errorf("unknown target class %q", class))
		}
	}
	if rule.Pattern != "" {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("compile pattern: %w", err))
		}
		out.pattern = re
	}
	if strings.TrimSpace(rule.Reason) == "" {
		errs = append(errs, errors.New("missing reason"))
	} else {
		tmpl, err := template.New(rule.ID).Parse(rule.Reason)
		if err == nil {
			err = tmpl.Execute(io.Discard, reasonData{})
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("reason template: %w", err))
		}
		out.reason = tmpl
	}
	return out, errs
}

// Source is the file the table came from, or EmbeddedSource.
func (t *RuleTable) Source() string {
	return t.source
}

// Len is the number of rules.
func (t *RuleTable) Len() int {
	return len(t.rules)
}

// Rules returns the rules in evaluation order.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, 0, len(t.rules))
	for _, rule := range t.rules {
		out = append(out, rule.Rule)
	}
	return out
}

// TargetClasses returns a copy of the declared class globs.
func (t *RuleTable) TargetClasses() map[string][]string {
	out := make(map[string][]string, len(t.targetClasses))
	for name, patterns := range t.targetClasses {
		out[name] = append([]string(nil), patterns...)
	}
	return out
}

func lowerAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}
