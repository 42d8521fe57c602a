package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/tradejournal/internal/app"
	"github.com/newthinker/tradejournal/internal/metrics"
	"github.com/newthinker/tradejournal/internal/playbook"
	"github.com/newthinker/tradejournal/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metricValue sums every sample of a gathered counter or gauge family.
func metricValue(t *testing.T, reg *metrics.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)

	var sum float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return sum
}

// Three 100 wins against two 50 losses: profit factor 3.0, win rate 60%.
func TestPerformanceHandler_Get(t *testing.T) {
	day := time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)
	store := seededStore(t,
		closedTrade("t1", "ES", 100, day),
		closedTrade("t2", "ES", -50, day.Add(time.Hour)),
		closedTrade("t3", "ES", 100, day.AddDate(0, 0, 1)),
		closedTrade("t4", "ES", -50, day.AddDate(0, 0, 2)),
		closedTrade("t5", "ES", 100, day.AddDate(0, 0, 3)),
	)
	reg := metrics.NewRegistry()
	handler := NewPerformanceHandler(store, testAccount, reg)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/v1/performance", nil))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.InDelta(t, 3.0, data["profit_factor"].(float64), 1e-9)
	assert.InDelta(t, 60.0, data["win_rate"].(float64), 1e-9)
	assert.InDelta(t, 250.0, data["net_profit"].(float64), 1e-9)

	assert.Equal(t, 1.0, metricValue(t, reg, "tradejournal_calculations_total"))
}

func TestPerformanceHandler_GetInvalidBalance(t *testing.T) {
	handler := NewPerformanceHandler(seededStore(t), testAccount, nil)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/v1/performance?balance=-1", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPerformanceHandler_Calculate(t *testing.T) {
	handler := NewPerformanceHandler(seededStore(t), testAccount, nil)

	body := `{"starting_balance": 5000, "trades": [
		{"id":"a","symbol":"ES","direction":"long","entry_price":100,"exit_price":110,"stop_price":95,"size":1,"pnl":10,"entry_time":"2024-03-04T15:00:00Z"},
		{"id":"b","symbol":"ES","direction":"short","entry_price":100,"exit_price":90,"stop_price":105,"size":1,"pnl":10,"entry_time":"2024-03-05T15:00:00Z"}
	]}`
	w := httptest.NewRecorder()
	handler.Calculate(w, httptest.NewRequest("POST", "/api/v1/performance", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, 2.0, data["closed_trades"])
	assert.InDelta(t, 2.0, data["expectancy"].(float64), 1e-9)
	assert.Nil(t, data["sortino"], "no losing R makes sortino undefined")
}

func TestPerformanceHandler_CalculateRejectsBadBody(t *testing.T) {
	handler := NewPerformanceHandler(seededStore(t), testAccount, nil)

	for _, body := range []string{`not json`, `{"trades": [], "starting_balance": -5}`} {
		w := httptest.NewRecorder()
		handler.Calculate(w, httptest.NewRequest("POST", "/api/v1/performance", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestPerformanceHandler_Score(t *testing.T) {
	reg := metrics.NewRegistry()
	handler := NewPerformanceHandler(seededStore(t), testAccount, reg)

	w := httptest.NewRecorder()
	handler.Score(w, httptest.NewRequest("GET", "/api/v1/score", nil))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, 0.0, data["score"], "empty journal scores zero")
	assert.Equal(t, 0.0, metricValue(t, reg, "tradejournal_trader_score"))
}

func TestSetupsHandler_Grade(t *testing.T) {
	reg := metrics.NewRegistry()
	handler := NewSetupsHandler(playbook.DefaultRubric(), reg)

	w := httptest.NewRecorder()
	handler.Grade(w, httptest.NewRequest("POST", "/api/v1/setups/grade", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, 1.0, data["score"], "nothing to check is vacuously perfect")
	assert.Equal(t, "A+", data["grade"])

	assert.Equal(t, 1.0, metricValue(t, reg, "tradejournal_setup_grades_total"))
}

func TestSetupsHandler_GradeMissedMust(t *testing.T) {
	handler := NewSetupsHandler(playbook.DefaultRubric(), nil)

	body := `{
		"rules": [{"id":"trend","type":"must","weight":1},{"id":"volume","type":"should","weight":1}],
		"rule_checks": {"volume": true},
		"confluences": [],
		"checklist": {}
	}`
	w := httptest.NewRecorder()
	handler.Grade(w, httptest.NewRequest("POST", "/api/v1/setups/grade", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	parts := decodeData(t, w)["parts"].(map[string]any)
	assert.Equal(t, true, parts["missed_must"])
	assert.Equal(t, false, parts["redistributed"])
}

func TestSetupsHandler_GradeRubricOverride(t *testing.T) {
	handler := NewSetupsHandler(playbook.DefaultRubric(), nil)

	w := httptest.NewRecorder()
	body := `{"rubric": {"weight_rules": 0.9, "weight_confluences": 0.9, "weight_checklist": 0}}`
	handler.Grade(w, httptest.NewRequest("POST", "/api/v1/setups/grade", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CONFIG_INVALID", decodeError(t, w).Code)
}

func newRiskHandler(t *testing.T, monitor Monitor) (*RiskHandler, time.Time) {
	now := time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)
	store := seededStore(t,
		closedTrade("t1", "ES", -200, now.Add(-3*time.Hour)),
		closedTrade("t2", "ES", -150, now.Add(-time.Hour)),
	)
	h := NewRiskHandler(store, testAccount, risk.DefaultSettings(), 0, monitor, nil)
	h.now = func() time.Time { return now }
	return h, now
}

func TestRiskHandler_Get(t *testing.T) {
	handler, _ := newRiskHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest("GET", "/api/v1/risk", nil))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	assert.Equal(t, string(risk.StatusViolated), data["status"])

	m := data["metrics"].(map[string]any)
	assert.InDelta(t, 3.5, m["daily_risk_used_pct"].(float64), 1e-9)
	assert.Equal(t, 2.0, m["consecutive_losses"])
}

func TestRiskHandler_Kelly(t *testing.T) {
	handler, _ := newRiskHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Kelly(w, httptest.NewRequest("GET", "/api/v1/risk/kelly", nil))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	k := data["kelly"].(map[string]any)
	assert.Equal(t, false, k["sufficient"], "two trades are below the minimum sample")
	assert.Equal(t, 0.0, data["suggested_risk_pct"])
}

func TestRiskHandler_Check(t *testing.T) {
	handler, _ := newRiskHandler(t, nil)

	body := `{"symbol":"NQ","entry":100,"stop":98,"target":104}`
	w := httptest.NewRecorder()
	handler.Check(w, httptest.NewRequest("POST", "/api/v1/risk/check", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.InDelta(t, 2.0, data["reward_risk"].(float64), 1e-9)

	// Equity 9650 at 1% risk over a 2 point stop.
	pos := data["position"].(map[string]any)
	assert.Equal(t, 48.0, pos["units"])

	rules := data["rules"].([]any)
	assert.NotEmpty(t, rules)
	assert.Equal(t, string(risk.StatusViolated), data["status"], "the daily budget is already spent")
}

func TestRiskHandler_CheckRejectsBadIntent(t *testing.T) {
	handler, _ := newRiskHandler(t, nil)

	w := httptest.NewRecorder()
	handler.Check(w, httptest.NewRequest("POST", "/api/v1/risk/check", strings.NewReader(`{"entry":100}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubMonitor struct {
	snap *app.Snapshot
}

func (s stubMonitor) Last() *app.Snapshot { return s.snap }
func (s stubMonitor) GetStats() map[string]any {
	return map[string]any{"running": true, "cycles": 3}
}

func TestRiskHandler_Monitor(t *testing.T) {
	disabled, now := newRiskHandler(t, nil)
	w := httptest.NewRecorder()
	disabled.Monitor(w, httptest.NewRequest("GET", "/api/v1/risk/monitor", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	handler, _ := newRiskHandler(t, stubMonitor{snap: &app.Snapshot{At: now, Trades: 2, Status: risk.StatusWarning}})
	w = httptest.NewRecorder()
	handler.Monitor(w, httptest.NewRequest("GET", "/api/v1/risk/monitor", nil))
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeData(t, w)
	snap := data["snapshot"].(map[string]any)
	assert.Equal(t, "warning", snap["status"])
	assert.Equal(t, 3.0, data["stats"].(map[string]any)["cycles"])
}
