package models

import (
	"time"

	"gorm.io/gorm"
)

// PRState represents the lifecycle state of a pull request
type PRState string

const (
	StateOpen   PRState = "open"
	StateClosed PRState = "closed"
	StateMerged PRState = "merged"
)

// PullRequest represents a tracked pull request in the system
type PullRequest struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Owner         string    `json:"owner" gorm:"not null;uniqueIndex:idx_pr_identity"`
	Repo          string    `json:"repo" gorm:"not null;uniqueIndex:idx_pr_identity"`
	Number        int       `json:"number" gorm:"not null;uniqueIndex:idx_pr_identity"`
	Title         string    `json:"title"`
	Author        string    `json:"author" gorm:"index"`
	State         PRState   `json:"state" gorm:"default:'open'"`
	Draft         bool      `json:"draft"`
	Mergeable     bool      `json:"mergeable"`
	Additions     int       `json:"additions"`
	Deletions     int       `json:"deletions"`
	HTMLURL       string    `json:"htmlUrl" gorm:"column:html_url"`
	HeadSHA       string    `json:"headSha" gorm:"column:head_sha"`
	LastFetchedAt time.Time `json:"lastFetchedAt" gorm:"column:last_fetched_at"`
	gorm.Model
}

// TableName specifies the table name for PullRequest Model
func (PullRequest) TableName() string {
	return "pull_requests"
}
