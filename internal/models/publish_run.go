package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PublishRun struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	StoreID         string     `json:"store_id" gorm:"index"`
	FeedID          string     `json:"feed_id"`
	FeedCreated     bool       `json:"feed_created"`
	FeedReady       bool       `json:"feed_ready"`
	PollAttempts    int        `json:"poll_attempts"`
	ArtifactPath    string     `json:"artifact_path"`
	RowCount        int        `json:"row_count"`
	UploadSessionID string     `json:"upload_session_id"`
	Status          RunStatus  `json:"status" gorm:"index;not null"`
	Stage           string     `json:"stage"`
	Error           *string    `json:"error"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

func (r *PublishRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
