package domain

import "strings"

// ReportState is the lifecycle state of a report. A report starts PENDING and
// moves exactly once, to APPROVED or CANCELLED.
type ReportState string

const (
	StatePending   ReportState = "PENDING"
	StateApproved  ReportState = "APPROVED"
	StateCancelled ReportState = "CANCELLED"
)

// Terminal reports no longer accept any mutation.
func (s ReportState) Terminal() bool {
	return s == StateApproved || s == StateCancelled
}

// ParseReportState returns the state for a given label (case-insensitive).
func ParseReportState(label string) (ReportState, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case string(StatePending):
		return StatePending, true
	case string(StateApproved):
		return StateApproved, true
	case string(StateCancelled):
		return StateCancelled, true
	}
	return "", false
}
