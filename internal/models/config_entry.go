package models

import "time"

// ConfigEntry is one store-scoped configuration value. ScopeID is empty for
// the default scope.
type ConfigEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Path      string    `json:"path" gorm:"uniqueIndex:idx_config_path_scope;not null"`
	ScopeID   string    `json:"scope_id" gorm:"uniqueIndex:idx_config_path_scope;not null;default:''"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
