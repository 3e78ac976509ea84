// Package registry maps action node types to the executors that run them.
package registry

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"plugin"
	"sort"
	"sync"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/protocol"
)

// pluginSymbol is the exported variable a plugin must provide, of type protocol.ActionExecutor.
const pluginSymbol = "Executor"

type Registry struct {
	logger    *slog.Logger
	mu        sync.RWMutex
	executors map[models.NodeType]protocol.ActionExecutor
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:    log.With("module", "registry"),
		executors: make(map[models.NodeType]protocol.ActionExecutor),
	}
}

// Register adds executor, replacing any executor already registered for its type.
func (r *Registry) Register(executor protocol.ActionExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.executors[executor.Type()] = executor
	r.logger.Debug("Registered executor", "type", executor.Type())
}

// Executor returns the executor for nodeType.
func (r *Registry) Executor(nodeType models.NodeType) (protocol.ActionExecutor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executor, ok := r.executors[nodeType]
	if !ok {
		return nil, fmt.Errorf("executor for type '%s' not registered", nodeType)
	}

	return executor, nil
}

// Types returns every registered node type, sorted.
func (r *Registry) Types() []models.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]models.NodeType, 0, len(r.executors))
	for nodeType := range r.executors {
		types = append(types, nodeType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// LoadPlugins opens every *.so under pluginsPath/executors and registers its Executor symbol.
// A missing directory is not an error.
func (r *Registry) LoadPlugins(pluginsPath string) (int, error) {
	rootPath := pluginsPath + "/executors"

	if _, err := os.Stat(rootPath); os.IsNotExist(err) {
		return 0, nil
	}

	pluginPathList, err := fs.Glob(os.DirFS(rootPath), "*.so")
	if err != nil {
		return 0, err
	}

	logger := r.logger.With(slog.String("path", rootPath))
	logger.Info("Loading executor plugins", "count", len(pluginPathList))

	for _, p := range pluginPathList {
		plg, err := plugin.Open(rootPath + "/" + p)
		if err != nil {
			return 0, fmt.Errorf("failed to open plugin %s: %w", p, err)
		}

		symbol, err := plg.Lookup(pluginSymbol)
		if err != nil {
			return 0, fmt.Errorf("plugin %s has no %s symbol: %w", p, pluginSymbol, err)
		}

		executor, ok := symbol.(*protocol.ActionExecutor)
		if !ok || *executor == nil {
			return 0, fmt.Errorf("plugin %s: %s is not a protocol.ActionExecutor", p, pluginSymbol)
		}

		r.Register(*executor)
		logger.Info("Loaded executor plugin", slog.String("plugin", p), slog.String("type", string((*executor).Type())))
	}

	return len(pluginPathList), nil
}
