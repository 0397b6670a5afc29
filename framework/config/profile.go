package config

import "sync"

// Profile is a named bundle of properties that can be switched on and off,
// e.g. "dev" or "production".
type Profile struct {
	Name       string
	Properties map[string]string
}

// NewProfile copies props into a new profile.
func NewProfile(name string, props map[string]string) Profile {
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return Profile{Name: name, Properties: cp}
}

// ProfileManager keeps the known profiles and the activation order.
// Lookups consult active profiles from the most recently activated one
// backwards.
type ProfileManager struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	active   []string
}

// NewProfileManager creates a manager with no profiles.
func NewProfileManager() *ProfileManager {
	return &ProfileManager{profiles: make(map[string]Profile)}
}

// Add registers p. Names are unique.
func (pm *ProfileManager) Add(p Profile) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, exists := pm.profiles[p.Name]; exists {
		return newError(ErrKindInvalid, "profile."+p.Name, "profile already exists", nil)
	}
	pm.profiles[p.Name] = NewProfile(p.Name, p.Properties)
	return nil
}

// Activate marks name active. Activating an already active profile keeps its
// original position in the activation order.
func (pm *ProfileManager) Activate(name string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, ok := pm.profiles[name]; !ok {
		return newError(ErrKindProfileNotFound, name, "", nil)
	}
	for _, n := range pm.active {
		if n == name {
			return nil
		}
	}
	pm.active = append(pm.active, name)
	return nil
}

// Deactivate removes name from the active set. Unknown names are ignored.
func (pm *ProfileManager) Deactivate(name string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	kept := pm.active[:0]
	for _, n := range pm.active {
		if n != name {
			kept = append(kept, n)
		}
	}
	pm.active = kept
}

// IsActive reports whether name is active.
func (pm *ProfileManager) IsActive(name string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for _, n := range pm.active {
		if n == name {
			return true
		}
	}
	return false
}

// Active returns the active profile names in activation order.
func (pm *ProfileManager) Active() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	out := make([]string, len(pm.active))
	copy(out, pm.active)
	return out
}

// Get returns a copy of the named profile.
func (pm *ProfileManager) Get(name string) (Profile, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	p, ok := pm.profiles[name]
	if !ok {
		return Profile{}, false
	}
	return NewProfile(p.Name, p.Properties), true
}

// Names returns every registered profile name, active or not.
func (pm *ProfileManager) Names() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	names := make([]string, 0, len(pm.profiles))
	for n := range pm.profiles {
		names = append(names, n)
	}
	return sortedStrings(names)
}

// PropertiesCount returns the number of properties in the named profile.
func (pm *ProfileManager) PropertiesCount(name string) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.profiles[name].Properties)
}

// Lookup returns the value for key from the highest-precedence active profile.
func (pm *ProfileManager) Lookup(key string) (string, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for i := len(pm.active) - 1; i >= 0; i-- {
		if v, ok := pm.profiles[pm.active[i]].Properties[key]; ok {
			return v, true
		}
	}
	return "", false
}

func (pm *ProfileManager) keys() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	var out []string
	for _, name := range pm.active {
		for k := range pm.profiles[name].Properties {
			out = append(out, k)
		}
	}
	return out
}
