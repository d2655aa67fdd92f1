package behaviour

import (
	"Volumetrics/internal/logger"
	"sort"
	"sync"

	"go.uber.org/zap"
)

type ScriptConstructor func() Component

var (
	registryMu     sync.RWMutex
	scriptRegistry = make(map[string]ScriptConstructor)
)

// RegisterScript makes a component constructible by name. Registering a name twice
// replaces the earlier constructor.
func RegisterScript(name string, constructor ScriptConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := scriptRegistry[name]; exists {
		logger.Log.Warn("Script registered twice, replacing", zap.String("script", name))
	}
	scriptRegistry[name] = constructor
}

// GetAvailableScripts lists registered names in order
func GetAvailableScripts() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(scriptRegistry))
	for name := range scriptRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateScript builds a registered component, or returns nil for unknown names
func CreateScript(name string) Component {
	registryMu.RLock()
	constructor, exists := scriptRegistry[name]
	registryMu.RUnlock()
	if !exists {
		logger.Log.Warn("Unknown script", zap.String("script", name))
		return nil
	}
	return constructor()
}
