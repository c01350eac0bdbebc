package models

import "time"

// ReadinessResult is the durable-store row for a cached readiness report.
// Data holds the JSON-encoded ReadinessReport; StoredAt is the timestamp the
// cache layer applies its TTL against.
type ReadinessResult struct {
	PRID     int64     `gorm:"column:pr_id;primaryKey"`
	Data     []byte    `gorm:"not null"`
	StoredAt time.Time `gorm:"column:stored_at;not null"`
}

// TableName specifies the table name for ReadinessResult Model
func (ReadinessResult) TableName() string {
	return "readiness_results"
}

// TimelineSnapshot is the durable-store row for a cached PR timeline,
// keyed by the composite "{owner}/{repo}/{number}" cache key.
type TimelineSnapshot struct {
	PRKey    string    `gorm:"column:pr_key;primaryKey"`
	Owner    string    `gorm:"not null"`
	Repo     string    `gorm:"not null"`
	Number   int       `gorm:"not null"`
	Data     []byte    `gorm:"not null"`
	StoredAt time.Time `gorm:"column:stored_at;not null"`
}

// TableName specifies the table name for TimelineSnapshot Model
func (TimelineSnapshot) TableName() string {
	return "timeline_snapshots"
}
