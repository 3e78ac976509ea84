package cmd

import (
	"fmt"

	"github.com/dukex/talentflow/pkg/modelregistry"
)

// NewCatalog loads the model catalog at path, or the built-in one when path is empty.
func NewCatalog(path string) *modelregistry.Registry {
	catalog, err := modelregistry.LoadFile(path)
	if err != nil {
		panic(fmt.Errorf("failed to load model catalog: %w", err))
	}

	return catalog
}
