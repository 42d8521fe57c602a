package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/newthinker/tradejournal/internal/core"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes r to w in the given format. An empty format means text.
func Render(w io.Writer, r Report, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		return renderYAML(w, r)
	}
	return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("unknown report format %q", format))
}

// renderYAML goes through JSON so YAML keys match the JSON field names.
func renderYAML(w io.Writer, r Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	blockStyle(&doc)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

var textFuncs = template.FuncMap{
	"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"opt": func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.2f", *v)
	},
	"upper": strings.ToUpper,
}

var textTemplate = template.Must(template.New("report").Funcs(textFuncs).Parse(textLayout))

const textLayout = `=== Trade Journal Report ===
ID:        {{.ID}}
Generated: {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}
{{- if .Account}}
Account:   {{.Account}}
{{- end}}
Balance:   {{f2 .StartingBalance}}

--- Performance ---
Trades:          {{.Performance.TotalTrades}} ({{.Performance.ClosedTrades}} closed)
Win rate:        {{f2 .Performance.WinRate}}%
Profit factor:   {{f2 .Performance.ProfitFactor}}
Net profit:      {{f2 .Performance.NetProfit}}
Expectancy (R):  {{opt .Performance.Expectancy}}
Net R:           {{f2 .Performance.NetR}} ({{.Performance.RSamples}} trades, {{.Performance.ExcludedFromR}} excluded)
Sharpe:          {{opt .Performance.Sharpe}}
Sortino:         {{opt .Performance.Sortino}}
Max drawdown:    {{f2 .Performance.MaxDrawdown}} ({{f2 .Performance.MaxDrawdownPct}}%)
Max drawdown R:  {{f2 .Performance.MaxDrawdownR}}
Recovery factor: {{f2 .Performance.RecoveryFactor}}
Calmar:          {{f2 .Performance.Calmar}}
Streaks:         {{.Performance.MaxConsecutiveWins}} wins / {{.Performance.MaxConsecutiveLosses}} losses

--- Trader Score ---
Score: {{f2 .Score.Score}} / 100
  win rate       {{f2 .Score.Breakdown.WinRatePoints}}
  profit factor  {{f2 .Score.Breakdown.ProfitFactorPoints}}
  win/loss       {{f2 .Score.Breakdown.WinLossPoints}}
  consistency    {{f2 .Score.Breakdown.ConsistencyPoints}}
  drawdown       {{f2 .Score.Breakdown.DrawdownPoints}}
  recovery       {{f2 .Score.Breakdown.RecoveryPoints}}

--- Risk ({{upper (printf "%s" .RiskStatus)}}) ---
Equity:          {{f2 .Risk.Equity}} (drawdown {{f2 .Risk.CurrentDrawdownPct}}%)
Open positions:  {{.Risk.OpenPositions}}
{{- range .Rules}}
  [{{printf "%-8s" .Status}}] {{.Message}}
{{- end}}
Kelly:           {{if .Kelly.Sufficient}}{{f2 .Kelly.Kelly}} (half {{f2 .Kelly.HalfKelly}}, suggested {{f2 .SuggestedRiskPct}}%){{else}}insufficient sample ({{.Kelly.SampleSize}} trades){{end}}
{{- if .Performance.Monthly}}

--- Monthly ---
{{- range .Performance.Monthly}}
  {{.Month}}  {{printf "%10.2f" .PnL}}  {{printf "%7.2f" .R}}R  {{.Trades}} trades
{{- end}}
{{- end}}
`

func renderText(w io.Writer, r Report) error {
	var buf bytes.Buffer
	if err := textTemplate.Execute(&buf, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
