// Package modelregistry holds the catalog of automatable domain models.
package modelregistry

import (
	"fmt"
	"os"
	"sort"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Catalog is the read-only view consumed by validation and matching.
type Catalog interface {
	Get(key string) (*models.AutomatableModel, bool)
	All() []models.AutomatableModel
}

// Registry is immutable once built and safe for concurrent reads.
type Registry struct {
	models map[string]models.AutomatableModel
	keys   []string
}

// New builds a registry from the given models. Keys must be unique.
func New(entries ...models.AutomatableModel) (*Registry, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	registry := &Registry{models: make(map[string]models.AutomatableModel, len(entries))}

	for _, entry := range entries {
		err := validate.Struct(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid model %q: %w", entry.Key, err)
		}

		if _, exists := registry.models[entry.Key]; exists {
			return nil, fmt.Errorf("duplicate model key %q", entry.Key)
		}

		registry.models[entry.Key] = entry
		registry.keys = append(registry.keys, entry.Key)
	}

	sort.Strings(registry.keys)

	return registry, nil
}

// Get returns the model registered under key.
func (r *Registry) Get(key string) (*models.AutomatableModel, bool) {
	model, ok := r.models[key]
	if !ok {
		return nil, false
	}

	return &model, true
}

// All returns every model sorted by key.
func (r *Registry) All() []models.AutomatableModel {
	all := make([]models.AutomatableModel, 0, len(r.keys))
	for _, key := range r.keys {
		all = append(all, r.models[key])
	}

	return all
}

type catalogFile struct {
	Models []models.AutomatableModel `yaml:"models"`
}

// LoadFile reads a YAML catalog. An empty path yields the built-in catalog.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog %s: %w", path, err)
	}

	var file catalogFile

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model catalog %s: %w", path, err)
	}

	if len(file.Models) == 0 {
		return nil, fmt.Errorf("model catalog %s declares no models", path)
	}

	return New(file.Models...)
}
