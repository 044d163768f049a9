// Package sla grades a completed scenario run against a set of
// congestion-control gates: achieved bandwidth, loss rate, congestion
// window bounds and RTT inflation over the path's min-RTT baseline.
package sla

import (
	"fmt"
	"strings"
)

// Gates are the pass/fail thresholds a scenario run is checked against.
type Gates struct {
	MinBandwidthBps     float64 // goodput floor the controller must reach
	MaxLossRateSmoothed float64 // ceiling on the EWMA loss rate
	MinCwndBytes        uint64  // cwin must never settle below this
	MaxCwndBytes        uint64  // cwin must never grow past this
	MaxRTTInflationMs   float64 // mean RTT minus min RTT ceiling
	RequireFilledPipe   bool    // Startup must exit before the run ends
}

// Metrics is the end-of-run summary a scenario produces for grading.
type Metrics struct {
	BandwidthBps     float64
	LossRateSmoothed float64
	MinCwndBytes     uint64
	MaxCwndBytes     uint64
	MinRTTMs         float64
	MeanRTTMs        float64
	P95RTTMs         float64
	FilledPipe       bool
	FinalState       string
}

// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Violation describes one gate that a scenario run failed.
type Violation struct {
	Metric   string
	Expected float64
	Actual   float64
	Severity Severity
	Message  string
}

// Result is the outcome of validating one scenario run's Metrics against
// a set of Gates.
type Result struct {
	Passed     bool
	Score      float64
	Violations []Violation
	Metrics    Metrics
	Summary    string
}

// Validator checks Metrics against Gates.
type Validator struct {
	gates Gates
}

// NewValidator builds a validator for the given gates.
func NewValidator(gates Gates) *Validator {
	return &Validator{gates: gates}
}

// Validate runs every gate check and returns a scored, summarized Result.
func (v *Validator) Validate(m Metrics) *Result {
	result := &Result{
		Passed:     true,
		Score:      1.0,
		Violations: make([]Violation, 0),
		Metrics:    m,
	}

	v.validateBandwidth(m, result)
	v.validateLoss(m, result)
	v.validateCwnd(m, result)
	v.validateRTT(m, result)
	v.validateFilledPipe(m, result)

	v.calculateScore(result)
	v.generateSummary(result)

	return result
}

func (v *Validator) validateBandwidth(m Metrics, result *Result) {
	if m.BandwidthBps < v.gates.MinBandwidthBps {
		result.Violations = append(result.Violations, Violation{
			Metric:   "bandwidth",
			Expected: v.gates.MinBandwidthBps,
			Actual:   m.BandwidthBps,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("bandwidth %.0f bps below floor %.0f bps", m.BandwidthBps, v.gates.MinBandwidthBps),
		})
		result.Passed = false
	}
}

func (v *Validator) validateLoss(m Metrics, result *Result) {
	if m.LossRateSmoothed > v.gates.MaxLossRateSmoothed {
		result.Violations = append(result.Violations, Violation{
			Metric:   "loss_rate_smoothed",
			Expected: v.gates.MaxLossRateSmoothed,
			Actual:   m.LossRateSmoothed,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("smoothed loss rate %.4f exceeds ceiling %.4f", m.LossRateSmoothed, v.gates.MaxLossRateSmoothed),
		})
		result.Passed = false
	}
}

func (v *Validator) validateCwnd(m Metrics, result *Result) {
	if v.gates.MinCwndBytes > 0 && m.MinCwndBytes < v.gates.MinCwndBytes {
		result.Violations = append(result.Violations, Violation{
			Metric:   "cwnd_min",
			Expected: float64(v.gates.MinCwndBytes),
			Actual:   float64(m.MinCwndBytes),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("cwin dropped to %d bytes, below floor %d", m.MinCwndBytes, v.gates.MinCwndBytes),
		})
	}
	if v.gates.MaxCwndBytes > 0 && m.MaxCwndBytes > v.gates.MaxCwndBytes {
		result.Violations = append(result.Violations, Violation{
			Metric:   "cwnd_max",
			Expected: float64(v.gates.MaxCwndBytes),
			Actual:   float64(m.MaxCwndBytes),
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("cwin grew to %d bytes, above ceiling %d", m.MaxCwndBytes, v.gates.MaxCwndBytes),
		})
	}
}

func (v *Validator) validateRTT(m Metrics, result *Result) {
	if v.gates.MaxRTTInflationMs <= 0 {
		return
	}
	inflation := m.MeanRTTMs - m.MinRTTMs
	if inflation > v.gates.MaxRTTInflationMs {
		result.Violations = append(result.Violations, Violation{
			Metric:   "rtt_inflation",
			Expected: v.gates.MaxRTTInflationMs,
			Actual:   inflation,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("mean RTT exceeds min RTT by %.2fms, ceiling %.2fms", inflation, v.gates.MaxRTTInflationMs),
		})
	}
}

func (v *Validator) validateFilledPipe(m Metrics, result *Result) {
	if v.gates.RequireFilledPipe && !m.FilledPipe {
		result.Violations = append(result.Violations, Violation{
			Metric:   "filled_pipe",
			Expected: 1,
			Actual:   0,
			Severity: SeverityCritical,
			Message:  "controller never exited Startup before the run ended",
		})
		result.Passed = false
	}
}

// calculateScore derives a 0.0-1.0 score from the accumulated violations.
func (v *Validator) calculateScore(result *Result) {
	if len(result.Violations) == 0 {
		result.Score = 1.0
		return
	}

	penalty := 0.0
	for _, violation := range result.Violations {
		switch violation.Severity {
		case SeverityCritical:
			penalty += 0.3
		case SeverityWarning:
			penalty += 0.1
		}
	}

	result.Score = 1.0 - penalty
	if result.Score < 0.0 {
		result.Score = 0.0
	}
}

func (v *Validator) generateSummary(result *Result) {
	if result.Passed {
		result.Summary = fmt.Sprintf("PASSED (score %.2f) - all gates within bounds", result.Score)
		return
	}

	critical, warning := 0, 0
	for _, violation := range result.Violations {
		switch violation.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warning++
		}
	}
	result.Summary = fmt.Sprintf("FAILED (score %.2f) - %d critical, %d warning violations", result.Score, critical, warning)
}

// DetailedReport renders a plain-text report of every violation.
func (v *Validator) DetailedReport(result *Result) string {
	var b strings.Builder

	b.WriteString("SLA Validation Report\n")
	b.WriteString("====================\n")
	fmt.Fprintf(&b, "Result: %s\n", result.Summary)
	fmt.Fprintf(&b, "Score: %.2f/1.0\n\n", result.Score)

	if len(result.Violations) == 0 {
		b.WriteString("no violations - all metrics within bounds\n")
		return b.String()
	}

	b.WriteString("Violations:\n-----------\n")
	for i, violation := range result.Violations {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, violation.Severity, violation.Metric)
		fmt.Fprintf(&b, "   expected %.2f, actual %.2f\n", violation.Expected, violation.Actual)
		fmt.Fprintf(&b, "   %s\n\n", violation.Message)
	}

	return b.String()
}
