package core

import "time"

// Severity levels carried by alerts.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Alert is a fired risk notification.
type Alert struct {
	Rule     string    `json:"rule"`
	Status   string    `json:"status"` // ok, warning, violated; empty for threshold rules
	Severity string    `json:"severity"`
	Message  string    `json:"message"`
	Current  float64   `json:"current"`
	Limit    float64   `json:"limit"`
	Account  string    `json:"account,omitempty"`
	FiredAt  time.Time `json:"fired_at"`
}
