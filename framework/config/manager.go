package config

import (
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Manager resolves flat keys across runtime overrides, active profiles and
// sources, in that order of precedence. Among profiles the most recently
// activated wins; among sources the most recently added wins.
//
// Resolved values are cached per key. Adding a source, setting or removing
// an override and changing profiles all clear the cache.
type Manager struct {
	mu        sync.RWMutex
	sources   []Source
	profiles  *ProfileManager
	overrides sync.Map // string → Value
	cache     sync.Map // string → cacheEntry
	gen       atomic.Uint64
	logger    *zap.Logger
}

// cacheEntry is only valid while gen matches the manager's generation, so a
// resolution racing an invalidation can never be served afterwards.
type cacheEntry struct {
	gen uint64
	v   Value
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger for source and profile changes.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager with no sources.
//
//	m := config.NewManager(config.WithLogger(logger))
//	_ = m.AddConfigFile("config/app.yaml")
//	m.AddSource(config.NewEnvSource(""))
//	port := m.GetIntOrDefault("server.port", 8080)
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		profiles: NewProfileManager(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("config")
	return m
}

// ── Sources ───────────────────────────────────────────────────────────────────

// AddSource appends src above every existing source.
func (m *Manager) AddSource(src Source) {
	if src == nil {
		return
	}
	m.mu.Lock()
	m.sources = append(m.sources, src)
	n := len(m.sources)
	m.mu.Unlock()

	m.InvalidateCache()
	m.logger.Debug("configuration source added",
		zap.String("source", src.Name()), zap.Int("sources", n))
}

// AddTOMLFile loads path as TOML and adds it as a source.
func (m *Manager) AddTOMLFile(path string) error { return m.addFile(path, FormatTOML) }

// AddYAMLFile loads path as YAML and adds it as a source.
func (m *Manager) AddYAMLFile(path string) error { return m.addFile(path, FormatYAML) }

// AddPropertiesFile loads path as a properties file and adds it as a source.
func (m *Manager) AddPropertiesFile(path string) error {
	return m.addFile(path, FormatProperties)
}

// AddConfigFile loads path with format detection and adds it as a source.
func (m *Manager) AddConfigFile(path string) error { return m.addFile(path, FormatAuto) }

func (m *Manager) addFile(path string, format Format) error {
	src, err := LoadFile(path, format)
	if err != nil {
		m.logger.Warn("configuration file not loaded", zap.String("path", path), zap.Error(err))
		return err
	}
	m.AddSource(src)
	return nil
}

// SourcesCount returns the number of sources.
func (m *Manager) SourcesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources)
}

// Sources returns the sources from lowest to highest precedence.
func (m *Manager) Sources() []Source {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Source, len(m.sources))
	copy(out, m.sources)
	return out
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Get resolves key.
func (m *Manager) Get(key string) (Value, bool) {
	gen := m.gen.Load()
	if e, ok := m.cache.Load(key); ok && e.(cacheEntry).gen == gen {
		return e.(cacheEntry).v, true
	}
	v, ok := m.resolve(key)
	if ok {
		m.cache.Store(key, cacheEntry{gen: gen, v: v})
	}
	return v, ok
}

func (m *Manager) resolve(key string) (Value, bool) {
	if v, ok := m.overrides.Load(key); ok {
		return v.(Value), true
	}
	if s, ok := m.profiles.Lookup(key); ok {
		return String(s), true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.sources) - 1; i >= 0; i-- {
		if v, ok := m.sources[i].Lookup(key); ok {
			return v, true
		}
	}
	return Value{}, false
}

// Has reports whether key resolves to anything.
func (m *Manager) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set installs a runtime override for key, above profiles and sources.
func (m *Manager) Set(key string, v Value) {
	m.overrides.Store(key, v)
	m.InvalidateCache()
}

// Unset removes the runtime override for key.
func (m *Manager) Unset(key string) {
	m.overrides.Delete(key)
	m.InvalidateCache()
}

// InvalidateCache drops every cached resolution.
func (m *Manager) InvalidateCache() {
	m.gen.Add(1)
	m.cache.Range(func(k, _ any) bool {
		m.cache.Delete(k)
		return true
	})
}

// Keys returns every key that can be enumerated: overrides, active profile
// properties and sources implementing KeyLister. Environment variables are
// not included.
func (m *Manager) Keys() []string {
	seen := make(map[string]struct{})
	m.overrides.Range(func(k, _ any) bool {
		seen[k.(string)] = struct{}{}
		return true
	})
	for _, k := range m.profiles.keys() {
		seen[k] = struct{}{}
	}
	for _, src := range m.Sources() {
		if l, ok := src.(KeyLister); ok {
			for _, k := range l.Keys() {
				seen[k] = struct{}{}
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	return sortedStrings(keys)
}

// ── Typed accessors ───────────────────────────────────────────────────────────

// GetString resolves key as a string.
func (m *Manager) GetString(key string) (string, error) {
	v, ok := m.Get(key)
	if !ok {
		return "", newError(ErrKindNotFound, key, "", nil)
	}
	s, ok := v.AsString()
	if !ok {
		return "", newError(ErrKindNotFound, key, "value of kind "+v.Kind().String()+" is not a string", nil)
	}
	return s, nil
}

// GetInt resolves key as a base-10 integer.
func (m *Manager) GetInt(key string) (int64, error) {
	v, ok := m.Get(key)
	if !ok {
		return 0, newError(ErrKindNotFound, key, "", nil)
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, newError(ErrKindNotFound, key, "value "+quote(v)+" is not an integer", nil)
	}
	return i, nil
}

// GetFloat resolves key as a float.
func (m *Manager) GetFloat(key string) (float64, error) {
	v, ok := m.Get(key)
	if !ok {
		return 0, newError(ErrKindNotFound, key, "", nil)
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, newError(ErrKindNotFound, key, "value "+quote(v)+" is not a number", nil)
	}
	return f, nil
}

// GetBool resolves key as a boolean.
func (m *Manager) GetBool(key string) (bool, error) {
	v, ok := m.Get(key)
	if !ok {
		return false, newError(ErrKindNotFound, key, "", nil)
	}
	b, ok := v.AsBool()
	if !ok {
		return false, newError(ErrKindNotFound, key, "value "+quote(v)+" is not a boolean", nil)
	}
	return b, nil
}

func (m *Manager) GetStringOrDefault(key, def string) string {
	if s, err := m.GetString(key); err == nil {
		return s
	}
	return def
}

func (m *Manager) GetIntOrDefault(key string, def int64) int64 {
	if i, err := m.GetInt(key); err == nil {
		return i
	}
	return def
}

func (m *Manager) GetFloatOrDefault(key string, def float64) float64 {
	if f, err := m.GetFloat(key); err == nil {
		return f
	}
	return def
}

func (m *Manager) GetBoolOrDefault(key string, def bool) bool {
	if b, err := m.GetBool(key); err == nil {
		return b
	}
	return def
}

// ── Profiles ──────────────────────────────────────────────────────────────────

// AddProfile registers p without activating it.
func (m *Manager) AddProfile(p Profile) error {
	if err := m.profiles.Add(p); err != nil {
		return err
	}
	m.logger.Debug("profile added",
		zap.String("profile", p.Name), zap.Int("properties", len(p.Properties)))
	return nil
}

// ActivateProfile activates a registered profile.
func (m *Manager) ActivateProfile(name string) error {
	if err := m.profiles.Activate(name); err != nil {
		return err
	}
	m.InvalidateCache()
	m.logger.Info("profile activated", zap.String("profile", name))
	return nil
}

// DeactivateProfile deactivates name; unknown names are ignored.
func (m *Manager) DeactivateProfile(name string) {
	m.profiles.Deactivate(name)
	m.InvalidateCache()
	m.logger.Info("profile deactivated", zap.String("profile", name))
}

// ActiveProfiles returns the active profile names in activation order.
func (m *Manager) ActiveProfiles() []string { return m.profiles.Active() }

// IsProfileActive reports whether name is active.
func (m *Manager) IsProfileActive(name string) bool { return m.profiles.IsActive(name) }

// Profile returns a copy of the named profile.
func (m *Manager) Profile(name string) (Profile, bool) { return m.profiles.Get(name) }

// Profiles returns the profile registry.
func (m *Manager) Profiles() *ProfileManager { return m.profiles }

func quote(v Value) string { return "\"" + v.String() + "\"" }

func sortedStrings(s []string) []string {
	sort.Strings(s)
	return s
}
