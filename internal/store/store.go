package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pr-readiness-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadinessStore persists readiness reports keyed by PR record ID. It is the
// durable tier behind the readiness cache family.
type ReadinessStore struct {
	db *gorm.DB
}

func NewReadinessStore(db *gorm.DB) *ReadinessStore {
	return &ReadinessStore{db: db}
}

// Load returns the stored report and its stored-at timestamp, or ok=false if
// no record exists.
func (s *ReadinessStore) Load(ctx context.Context, prID int64) (models.ReadinessReport, time.Time, bool, error) {
	var zero models.ReadinessReport

	var row models.ReadinessResult
	err := s.db.WithContext(ctx).Where("pr_id = ?", prID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, time.Time{}, false, nil
	}
	if err != nil {
		return zero, time.Time{}, false, fmt.Errorf("loading readiness record %d: %w", prID, err)
	}

	var report models.ReadinessReport
	if err := json.Unmarshal(row.Data, &report); err != nil {
		return zero, time.Time{}, false, fmt.Errorf("decoding readiness record %d: %w", prID, err)
	}
	return report, row.StoredAt, true, nil
}

func (s *ReadinessStore) Save(ctx context.Context, prID int64, report models.ReadinessReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding readiness record %d: %w", prID, err)
	}
	row := models.ReadinessResult{
		PRID:     prID,
		Data:     data,
		StoredAt: time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

// Delete removes the record if present; deleting a missing record succeeds.
func (s *ReadinessStore) Delete(ctx context.Context, prID int64) error {
	return s.db.WithContext(ctx).
		Delete(&models.ReadinessResult{}, "pr_id = ?", prID).Error
}

// TimelineStore persists timeline snapshots keyed by the composite
// "{owner}/{repo}/{number}" cache key. It is the durable tier behind the
// timeline cache family.
type TimelineStore struct {
	db *gorm.DB
}

func NewTimelineStore(db *gorm.DB) *TimelineStore {
	return &TimelineStore{db: db}
}

func (s *TimelineStore) Load(ctx context.Context, key string) (models.Timeline, time.Time, bool, error) {
	var zero models.Timeline

	var row models.TimelineSnapshot
	err := s.db.WithContext(ctx).Where("pr_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, time.Time{}, false, nil
	}
	if err != nil {
		return zero, time.Time{}, false, fmt.Errorf("loading timeline snapshot %s: %w", key, err)
	}

	var timeline models.Timeline
	if err := json.Unmarshal(row.Data, &timeline); err != nil {
		return zero, time.Time{}, false, fmt.Errorf("decoding timeline snapshot %s: %w", key, err)
	}
	return timeline, row.StoredAt, true, nil
}

func (s *TimelineStore) Save(ctx context.Context, key string, timeline models.Timeline) error {
	data, err := json.Marshal(timeline)
	if err != nil {
		return fmt.Errorf("encoding timeline snapshot %s: %w", key, err)
	}
	row := models.TimelineSnapshot{
		PRKey:    key,
		Owner:    timeline.Owner,
		Repo:     timeline.Repo,
		Number:   timeline.Number,
		Data:     data,
		StoredAt: time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *TimelineStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Delete(&models.TimelineSnapshot{}, "pr_key = ?", key).Error
}
