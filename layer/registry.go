package layer

import "sync"

// registry is the process-wide layer registry: every live Layer is
// reachable by its identifier so that FindOrOpen/Find return the same
// instance for the same identifier rather than re-reading the asset.
var registry = struct {
	mu   sync.Mutex
	byID map[string]*Layer
}{byID: make(map[string]*Layer)}

func registryInsert(l *Layer) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.byID[l.identifier] = l
}

func registryFind(identifier string) (*Layer, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	l, ok := registry.byID[identifier]
	return l, ok
}

func registryRemove(identifier string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.byID, identifier)
}

// mutedLayers is the process-wide muted-layer set. Muting is an
// identifier property, not tied to any one Layer instance, so it is
// deliberately process state rather than a field on Layer.
var mutedLayers = struct {
	mu  sync.Mutex
	set map[string]bool
}{set: make(map[string]bool)}

// SetMuted mutes or unmutes the layer identified by identifier.
func SetMuted(identifier string, muted bool) {
	mutedLayers.mu.Lock()
	defer mutedLayers.mu.Unlock()
	if muted {
		mutedLayers.set[identifier] = true
	} else {
		delete(mutedLayers.set, identifier)
	}
}

// IsMuted reports whether identifier is currently muted.
func IsMuted(identifier string) bool {
	mutedLayers.mu.Lock()
	defer mutedLayers.mu.Unlock()
	return mutedLayers.set[identifier]
}

// IsMuted reports whether l itself is muted.
func (l *Layer) IsMuted() bool { return IsMuted(l.identifier) }
