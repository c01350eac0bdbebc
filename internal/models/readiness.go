package models

import "time"

// ReadinessVerdict summarizes whether a PR is ready to merge
type ReadinessVerdict string

const (
	VerdictReady     ReadinessVerdict = "ready"
	VerdictNotReady  ReadinessVerdict = "notReady"
	VerdictNeedsWork ReadinessVerdict = "needsWork"
)

// ReadinessCheck is a single pass/fail criterion in a readiness report
type ReadinessCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ReadinessReport is the computed merge-readiness result for a PR
type ReadinessReport struct {
	PRID        int64            `json:"prId"`
	Verdict     ReadinessVerdict `json:"verdict"`
	Checks      []ReadinessCheck `json:"checks"`
	Approvals   int              `json:"approvals"`
	GeneratedAt time.Time        `json:"generatedAt"`
}
