package enhance

import (
	"fmt"
	"sort"
	"sync"

	"lowlight-enhancer/internal/enhance/clahe"
	"lowlight-enhancer/internal/enhance/powerlaw"
	"lowlight-enhancer/internal/enhance/threshold"
)

// Manager holds the registered enhancement methods keyed by name.
type Manager struct {
	methods    map[string]Method
	parameters map[string]map[string]interface{}
	mu         sync.RWMutex
}

func NewManager() *Manager {
	manager := &Manager{
		methods:    make(map[string]Method),
		parameters: make(map[string]map[string]interface{}),
	}

	manager.registerMethods()
	manager.initializeDefaultParameters()

	return manager
}

func (m *Manager) registerMethods() {
	for _, method := range []Method{
		powerlaw.NewProcessor(),
		clahe.NewProcessor(),
		threshold.NewProcessor(),
	} {
		m.methods[method.GetName()] = method
	}
}

func (m *Manager) initializeDefaultParameters() {
	for name, method := range m.methods {
		m.parameters[name] = method.GetDefaultParameters()
	}
}

func (m *Manager) GetMethod(name string) (Method, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if method, exists := m.methods[name]; exists {
		return method, nil
	}

	return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidParameter, name)
}

func (m *Manager) GetParameters(name string) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]interface{})
	for k, v := range m.parameters[name] {
		result[k] = v
	}
	return result
}

func (m *Manager) SetParameter(method, name string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if params, exists := m.parameters[method]; exists {
		params[name] = value
		return nil
	}

	return fmt.Errorf("%w: unknown method %q", ErrInvalidParameter, method)
}

func (m *Manager) GetAvailableMethods() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.methods))
	for name := range m.methods {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
