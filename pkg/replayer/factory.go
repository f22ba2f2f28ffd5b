package replayer

import (
	"fmt"
	"sync"

	"firestige.xyz/vkreplay/internal/core"
)

type factoryRegistry struct {
	mu        sync.RWMutex
	factories map[core.TracerID]Factory
}

func (r *factoryRegistry) register(id core.TracerID, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[core.TracerID]Factory)
	}
	r.factories[id] = f
}

func (r *factoryRegistry) get(id core.TracerID) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// Reset clears all registrations.
func (r *factoryRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[core.TracerID]Factory)
}

var factoryReg = &factoryRegistry{}

// RegisterFactory registers the factory for a tracer id, replacing any previous one.
func RegisterFactory(id core.TracerID, f Factory) {
	factoryReg.register(id, f)
}

// GetFactory returns the factory registered for id.
func GetFactory(id core.TracerID) (Factory, error) {
	f, ok := factoryReg.get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNoFactory, id)
	}
	return f, nil
}

// New creates an uninitialized replayer for id.
func New(id core.TracerID) (Replayer, error) {
	f, err := GetFactory(id)
	if err != nil {
		return nil, err
	}
	r := f()
	if r == nil {
		return nil, fmt.Errorf("%w: factory for %s returned nil", core.ErrReplayerInit, id)
	}
	return r, nil
}
