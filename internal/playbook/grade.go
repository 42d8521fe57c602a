package playbook

import (
	"math"

	"github.com/newthinker/tradejournal/internal/core"
)

// Input is a setup evaluated against a playbook. Check maps are keyed by
// rule, confluence or checklist item ID. A nil Checklist means the
// playbook has no checklist and its weight is redistributed.
type Input struct {
	Rules            []Rule          `json:"rules" yaml:"rules"`
	RuleChecks       map[string]bool `json:"rule_checks" yaml:"rule_checks"`
	Confluences      []Confluence    `json:"confluences" yaml:"confluences"`
	ConfluenceChecks map[string]bool `json:"confluence_checks" yaml:"confluence_checks"`
	Checklist        map[string]bool `json:"checklist,omitempty" yaml:"checklist,omitempty"`
}

// Parts exposes the intermediate values of a grade.
type Parts struct {
	RulesPct        float64  `json:"rules_pct" yaml:"rules_pct"`
	ConfPct         float64  `json:"conf_pct" yaml:"conf_pct"`
	ChecklistPct    float64  `json:"checklist_pct" yaml:"checklist_pct"`
	Redistributed   bool     `json:"redistributed" yaml:"redistributed"`
	Raw             float64  `json:"raw" yaml:"raw"`
	MissedMust      bool     `json:"missed_must" yaml:"missed_must"`
	MissedMustRules []string `json:"missed_must_rules,omitempty" yaml:"missed_must_rules,omitempty"`
	Checked         int      `json:"checked" yaml:"checked"`
	BelowMinChecks  bool     `json:"below_min_checks" yaml:"below_min_checks"`
}

// Result is a graded setup.
type Result struct {
	Score float64 `json:"score" yaml:"score"`
	Grade string  `json:"grade" yaml:"grade"`
	Parts Parts   `json:"parts" yaml:"parts"`
}

// Grade scores in against r. The score is always within [0, 1].
func Grade(r Rubric, in Input) Result {
	var p Parts

	p.RulesPct, p.Checked = rulesPct(in.Rules, in.RuleChecks)

	primary := r.PrimaryMultiplier
	if primary == 0 {
		primary = 1
	}
	confPct, confChecked := confluencesPct(in.Confluences, in.ConfluenceChecks, primary)
	p.ConfPct = confPct
	p.Checked += confChecked

	wRules, wConf, wCheck := r.WeightRules, r.WeightConfluences, r.WeightChecklist
	if in.Checklist == nil {
		split := r.Redistribution
		if split == (Split{}) {
			split = DefaultRedistribution
		}
		wRules += wCheck * split.Rules
		wConf += wCheck * split.Confluences
		wCheck = 0
		p.Redistributed = true
	} else {
		p.ChecklistPct = 1
		if len(in.Checklist) > 0 {
			var checked int
			for _, ok := range in.Checklist {
				if ok {
					checked++
				}
			}
			p.ChecklistPct = float64(checked) / float64(len(in.Checklist))
			p.Checked += checked
		}
	}

	p.Raw = wRules*p.RulesPct + wConf*p.ConfPct + wCheck*p.ChecklistPct
	score := p.Raw

	for _, rule := range in.Rules {
		if rule.Type == RuleMust && !in.RuleChecks[rule.ID] {
			p.MissedMust = true
			p.MissedMustRules = append(p.MissedMustRules, rule.ID)
		}
	}
	if p.MissedMust {
		score *= 1 - r.MustRulePenalty
	}

	score = core.Round(clamp01(score), 4)
	p.BelowMinChecks = p.Checked < r.MinChecks

	return Result{
		Score: score,
		Grade: r.GradeFor(score),
		Parts: p,
	}
}

// rulesPct is the weighted fraction of checked rules. An empty or
// weightless rule set counts as fully satisfied.
func rulesPct(rules []Rule, checks map[string]bool) (float64, int) {
	var total, hit float64
	var checked int
	for _, rule := range rules {
		total += rule.Weight
		if checks[rule.ID] {
			hit += rule.Weight
			checked++
		}
	}
	if total <= 0 {
		return 1, checked
	}
	return hit / total, checked
}

func confluencesPct(confs []Confluence, checks map[string]bool, primary float64) (float64, int) {
	var total, hit float64
	var checked int
	for _, c := range confs {
		w := c.Weight
		if c.Primary {
			w *= primary
		}
		total += w
		if checks[c.ID] {
			hit += w
			checked++
		}
	}
	if total <= 0 {
		return 1, checked
	}
	return hit / total, checked
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
