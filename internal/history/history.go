// Package history keeps a row per feed publish run.
package history

import (
	"context"
	"fmt"

	"catalogfeed/internal/feed"
	"catalogfeed/internal/models"
	"catalogfeed/internal/stores"

	"gorm.io/gorm"
)

const defaultListLimit = 20

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record stores a finished run.
func (r *Recorder) Record(ctx context.Context, run *feed.Run) error {
	row := toModel(run)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to record publish run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the latest runs for scope, newest first.
func (r *Recorder) List(ctx context.Context, scope stores.Scope, limit int) ([]models.PublishRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var runs []models.PublishRun
	err := r.db.WithContext(ctx).
		Where("store_id = ?", string(scope)).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch publish runs: %w", err)
	}
	return runs, nil
}

func toModel(run *feed.Run) *models.PublishRun {
	row := &models.PublishRun{
		ID:           run.ID,
		StoreID:      string(run.Scope),
		FeedID:       run.Identity.ID,
		FeedCreated:  run.Identity.Created,
		FeedReady:    run.Identity.Ready,
		PollAttempts: run.Identity.PollAttempts,
		ArtifactPath: run.ArtifactPath,
		RowCount:     run.RowCount,
		Status:       models.RunStatusSucceeded,
		Stage:        string(run.Stage),
		StartedAt:    run.StartedAt,
	}
	if run.Upload != nil {
		row.UploadSessionID = run.Upload.ID
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		row.FinishedAt = &finished
	}
	if run.Err != nil {
		msg := run.Err.Error()
		row.Status = models.RunStatusFailed
		row.Error = &msg
	}
	return row
}
