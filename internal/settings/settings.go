// Package settings is the store-scoped configuration store. Values are kept
// in the config_entries table; a store value overrides the default-scope
// value for the same path.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"catalogfeed/internal/models"
	"catalogfeed/internal/stores"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	PathFeedID      = "facebook/business_extension/feed_id"
	PathCatalogID   = "facebook/business_extension/catalog_id"
	PathAccessToken = "facebook/business_extension/access_token"
	PathDebugMode   = "facebook/business_extension/debug_mode"
)

// StoreSettings is the configuration one publish run works with. It is
// resolved once and passed along; nothing reads configuration behind it.
type StoreSettings struct {
	Scope       stores.Scope
	FeedID      string
	CatalogID   string
	AccessToken string
	Debug       bool
}

type Store struct {
	db *gorm.DB

	mu    sync.RWMutex
	cache map[stores.Scope]StoreSettings
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		cache: make(map[stores.Scope]StoreSettings),
	}
}

// storeOnly lists paths that never fall back to the default scope. A feed
// belongs to one store's catalogue.
var storeOnly = map[string]bool{
	PathFeedID: true,
}

// Get returns the value stored for path in scope, falling back to the default
// scope unless path is store-only. ok is false when no value applies.
func (s *Store) Get(ctx context.Context, path string, scope stores.Scope) (value string, ok bool, err error) {
	scopes := []string{string(scope)}
	if scope != stores.DefaultScope && !storeOnly[path] {
		scopes = append(scopes, string(stores.DefaultScope))
	}

	var entries []models.ConfigEntry
	err = s.db.WithContext(ctx).
		Where("path = ? AND scope_id IN ?", path, scopes).
		Find(&entries).Error
	if err != nil {
		return "", false, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	for _, want := range scopes {
		for _, e := range entries {
			if e.ScopeID == want {
				return e.Value, true, nil
			}
		}
	}
	return "", false, nil
}

// Resolve loads every setting the exporter needs for scope. Results are
// cached until CleanCache.
func (s *Store) Resolve(ctx context.Context, scope stores.Scope) (StoreSettings, error) {
	s.mu.RLock()
	cached, ok := s.cache[scope]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	out := StoreSettings{Scope: scope}
	var err error
	if out.FeedID, _, err = s.Get(ctx, PathFeedID, scope); err != nil {
		return StoreSettings{}, err
	}
	if out.CatalogID, _, err = s.Get(ctx, PathCatalogID, scope); err != nil {
		return StoreSettings{}, err
	}
	if out.AccessToken, _, err = s.Get(ctx, PathAccessToken, scope); err != nil {
		return StoreSettings{}, err
	}
	debug, _, err := s.Get(ctx, PathDebugMode, scope)
	if err != nil {
		return StoreSettings{}, err
	}
	out.Debug = parseFlag(debug)

	s.mu.Lock()
	s.cache[scope] = out
	s.mu.Unlock()
	return out, nil
}

func (s *Store) FeedID(ctx context.Context, scope stores.Scope) (string, error) {
	v, _, err := s.Get(ctx, PathFeedID, scope)
	return v, err
}

func (s *Store) CatalogID(ctx context.Context, scope stores.Scope) (string, error) {
	v, _, err := s.Get(ctx, PathCatalogID, scope)
	return v, err
}

func (s *Store) AccessToken(ctx context.Context, scope stores.Scope) (string, error) {
	v, _, err := s.Get(ctx, PathAccessToken, scope)
	return v, err
}

func (s *Store) IsDebugMode(ctx context.Context, scope stores.Scope) (bool, error) {
	v, _, err := s.Get(ctx, PathDebugMode, scope)
	return parseFlag(v), err
}

// SaveConfig writes value for path in scope, replacing an existing value.
func (s *Store) SaveConfig(ctx context.Context, path, value string, scope stores.Scope) error {
	if path == "" {
		return errors.New("config path is required")
	}
	entry := models.ConfigEntry{Path: path, ScopeID: string(scope), Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}, {Name: "scope_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save config %s: %w", path, err)
	}
	return nil
}

// CleanCache drops every cached StoreSettings.
func (s *Store) CleanCache() {
	s.mu.Lock()
	s.cache = make(map[stores.Scope]StoreSettings)
	s.mu.Unlock()
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
