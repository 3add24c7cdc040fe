// Package stores maps store scopes to the storefront attributes the feed
// needs: the store code used in artifact names, the link base URL and the
// price currency.
package stores

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scope identifies a storefront. The zero value is the default store.
type Scope string

// DefaultScope selects the default store.
const DefaultScope Scope = ""

var ErrUnknownStore = errors.New("unknown store")

type Store struct {
	ID       string `yaml:"id" json:"id"`
	Code     string `yaml:"code" json:"code"`
	Name     string `yaml:"name" json:"name"`
	BaseURL  string `yaml:"base_url" json:"base_url"`
	Currency string `yaml:"currency" json:"currency"`
}

type file struct {
	Default string  `yaml:"default"`
	Stores  []Store `yaml:"stores"`
}

type Registry struct {
	defaultID string
	stores    []Store
	byID      map[string]int
}

// Load reads the registry from a YAML file. A missing file yields a registry
// holding a single default store.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewRegistry("1", []Store{{ID: "1", Code: "default", Name: "Default Store View", Currency: "USD"}})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stores file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse stores file: %w", err)
	}
	return NewRegistry(f.Default, f.Stores)
}

func NewRegistry(defaultID string, list []Store) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("stores: at least one store is required")
	}
	if defaultID == "" {
		defaultID = list[0].ID
	}

	r := &Registry{defaultID: defaultID, byID: make(map[string]int, len(list))}
	for _, s := range list {
		if s.ID == "" || s.Code == "" {
			return nil, fmt.Errorf("stores: store %q needs both id and code", s.ID)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("stores: duplicate store id %q", s.ID)
		}
		if s.Currency == "" {
			s.Currency = "USD"
		}
		r.byID[s.ID] = len(r.stores)
		r.stores = append(r.stores, s)
	}
	if _, ok := r.byID[defaultID]; !ok {
		return nil, fmt.Errorf("stores: default store %q is not defined", defaultID)
	}
	return r, nil
}

// Resolve returns the store for scope, the default store for DefaultScope.
func (r *Registry) Resolve(scope Scope) (Store, error) {
	id := string(scope)
	if id == "" {
		id = r.defaultID
	}
	i, ok := r.byID[id]
	if !ok {
		return Store{}, fmt.Errorf("%w: %s", ErrUnknownStore, id)
	}
	return r.stores[i], nil
}

// IsDefault reports whether scope addresses the default store.
func (r *Registry) IsDefault(scope Scope) bool {
	return scope == DefaultScope || string(scope) == r.defaultID
}

func (r *Registry) Default() Store {
	return r.stores[r.byID[r.defaultID]]
}

// All returns the stores in file order.
func (r *Registry) All() []Store {
	out := make([]Store, len(r.stores))
	copy(out, r.stores)
	return out
}
