// Package playbook grades how closely a trade setup follows a playbook's
// weighted rules, confluences and checklist.
package playbook

import (
	"fmt"
	"math"
	"sort"

	"github.com/newthinker/tradejournal/internal/core"
)

// RuleType classifies how binding a playbook rule is.
type RuleType string

const (
	RuleMust     RuleType = "must"
	RuleShould   RuleType = "should"
	RuleConsider RuleType = "consider"
)

// Rule is a weighted playbook rule.
type Rule struct {
	ID     string   `json:"id" yaml:"id"`
	Label  string   `json:"label" yaml:"label"`
	Type   RuleType `json:"type" yaml:"type"`
	Weight float64  `json:"weight" yaml:"weight"`
}

// Confluence is a weighted supporting factor.
type Confluence struct {
	ID      string  `json:"id" yaml:"id"`
	Label   string  `json:"label" yaml:"label"`
	Weight  float64 `json:"weight" yaml:"weight"`
	Primary bool    `json:"primary" yaml:"primary"`
}

// GradeCutoff is the minimum score for a letter grade.
type GradeCutoff struct {
	Grade string  `json:"grade" yaml:"grade" mapstructure:"grade"`
	Min   float64 `json:"min" yaml:"min" mapstructure:"min"`
}

// Split divides the checklist weight between rules and confluences when no
// checklist is supplied.
type Split struct {
	Rules       float64 `json:"rules" yaml:"rules" mapstructure:"rules"`
	Confluences float64 `json:"confluences" yaml:"confluences" mapstructure:"confluences"`
}

// DefaultRedistribution moves two thirds of the checklist weight to rules
// and one third to confluences (0.30 becomes +0.20 and +0.10).
var DefaultRedistribution = Split{Rules: 2.0 / 3.0, Confluences: 1.0 / 3.0}

// Rubric holds the scoring weights of a playbook. The three weights are
// used as given; call Validate to check them.
type Rubric struct {
	WeightRules       float64       `json:"weight_rules" yaml:"weight_rules"`
	WeightConfluences float64       `json:"weight_confluences" yaml:"weight_confluences"`
	WeightChecklist   float64       `json:"weight_checklist" yaml:"weight_checklist"`
	MustRulePenalty   float64       `json:"must_rule_penalty" yaml:"must_rule_penalty"`
	MinChecks         int           `json:"min_checks" yaml:"min_checks"`
	GradeCutoffs      []GradeCutoff `json:"grade_cutoffs" yaml:"grade_cutoffs"`
	// FloorGrade is assigned below every cutoff. Defaults to "F".
	FloorGrade string `json:"floor_grade,omitempty" yaml:"floor_grade,omitempty"`
	// PrimaryMultiplier scales the weight of primary confluences. Zero
	// means 1.
	PrimaryMultiplier float64 `json:"primary_multiplier,omitempty" yaml:"primary_multiplier,omitempty"`
	// Redistribution applies when no checklist is supplied. The zero
	// value means DefaultRedistribution.
	Redistribution Split `json:"redistribution" yaml:"redistribution"`
}

// DefaultRubric returns the stock rubric.
func DefaultRubric() Rubric {
	return Rubric{
		WeightRules:       0.5,
		WeightConfluences: 0.2,
		WeightChecklist:   0.3,
		MustRulePenalty:   0.4,
		MinChecks:         3,
		GradeCutoffs: []GradeCutoff{
			{Grade: "A+", Min: 0.95},
			{Grade: "A", Min: 0.90},
			{Grade: "B", Min: 0.80},
			{Grade: "C", Min: 0.70},
			{Grade: "D", Min: 0.60},
		},
		FloorGrade: "F",
	}
}

// Validate checks that the weights sum to 1 and every fraction lies in
// [0, 1]. Grade does not call it.
func (r Rubric) Validate() error {
	sum := r.WeightRules + r.WeightConfluences + r.WeightChecklist
	if math.Abs(sum-1) > 1e-6 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("rubric weights sum to %.4f, want 1", sum))
	}
	for name, w := range map[string]float64{
		"weight_rules":       r.WeightRules,
		"weight_confluences": r.WeightConfluences,
		"weight_checklist":   r.WeightChecklist,
		"must_rule_penalty":  r.MustRulePenalty,
	} {
		if w < 0 || w > 1 {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("%s must be within [0,1], got %v", name, w))
		}
	}
	if r.MinChecks < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("min_checks must not be negative"))
	}

	seen := make(map[string]bool)
	for _, c := range r.GradeCutoffs {
		if c.Grade == "" {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("grade cutoff without a grade"))
		}
		if seen[c.Grade] {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("duplicate grade %q", c.Grade))
		}
		seen[c.Grade] = true
		if c.Min < 0 || c.Min > 1 {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("grade %s cutoff must be within [0,1], got %v", c.Grade, c.Min))
		}
	}
	if r.PrimaryMultiplier < 0 {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("primary_multiplier must not be negative"))
	}
	return nil
}

// GradeFor maps a score onto the highest cutoff it meets.
func (r Rubric) GradeFor(score float64) string {
	cutoffs := make([]GradeCutoff, len(r.GradeCutoffs))
	copy(cutoffs, r.GradeCutoffs)
	sort.SliceStable(cutoffs, func(i, j int) bool {
		return cutoffs[i].Min > cutoffs[j].Min
	})

	for _, c := range cutoffs {
		if score >= c.Min {
			return c.Grade
		}
	}
	if r.FloorGrade != "" {
		return r.FloorGrade
	}
	return "F"
}
