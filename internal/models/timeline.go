package models

import "time"

// TimelineEvent is a single event fetched from the upstream PR timeline
type TimelineEvent struct {
	Type      string    `json:"type"`
	Actor     string    `json:"actor"`
	State     string    `json:"state,omitempty"` // review state: approved, changes_requested, commented
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Timeline is the ordered event history of a pull request
type Timeline struct {
	Owner     string          `json:"owner"`
	Repo      string          `json:"repo"`
	Number    int             `json:"number"`
	Events    []TimelineEvent `json:"events"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// ReviewAnalysis summarizes review activity derived from a timeline
type ReviewAnalysis struct {
	Approvals        int       `json:"approvals"`
	ChangesRequested int       `json:"changesRequested"`
	Comments         int       `json:"comments"`
	Reviewers        []string  `json:"reviewers"`
	LastReviewAt     time.Time `json:"lastReviewAt"`
}
