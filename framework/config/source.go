package config

import (
	"os"
	"sort"
	"strings"
)

// Source is one layer of configuration. Lookups are by flat dot-separated
// key, e.g. "server.port".
type Source interface {
	Name() string
	Lookup(key string) (Value, bool)
}

// KeyLister is implemented by sources that can enumerate their keys.
// Environment-backed sources cannot and do not.
type KeyLister interface {
	Keys() []string
}

// ── MapSource ─────────────────────────────────────────────────────────────────

// MapSource serves a fixed set of in-memory properties.
type MapSource struct {
	name  string
	props map[string]string
}

// NewMapSource copies props into a new source.
func NewMapSource(name string, props map[string]string) *MapSource {
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	if name == "" {
		name = "properties"
	}
	return &MapSource{name: name, props: cp}
}

func (s *MapSource) Name() string { return s.name }

func (s *MapSource) Lookup(key string) (Value, bool) {
	v, ok := s.props[key]
	if !ok {
		return Value{}, false
	}
	return String(v), true
}

func (s *MapSource) Keys() []string { return sortedKeys(s.props) }

// Len returns the number of properties.
func (s *MapSource) Len() int { return len(s.props) }

// ── EnvSource ─────────────────────────────────────────────────────────────────

// EnvSource reads the process environment on every lookup, so variables set
// after the source was added are visible. "server.port" maps to SERVER_PORT,
// or to APP_SERVER_PORT with prefix "APP".
type EnvSource struct {
	prefix string
}

// NewEnvSource creates an environment source with an optional variable prefix.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{prefix: strings.TrimSuffix(strings.ToUpper(prefix), "_")}
}

func (s *EnvSource) Name() string {
	if s.prefix == "" {
		return "environment"
	}
	return "environment:" + s.prefix
}

func (s *EnvSource) Lookup(key string) (Value, bool) {
	v, ok := os.LookupEnv(s.VarName(key))
	if !ok {
		return Value{}, false
	}
	return String(v), true
}

// VarName returns the environment variable consulted for key.
func (s *EnvSource) VarName(key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if s.prefix != "" {
		name = s.prefix + "_" + name
	}
	return name
}

// ── ArgsSource ────────────────────────────────────────────────────────────────

// ArgsSource reads "--key=value" command-line arguments. A bare "--flag" is
// recorded as "true"; arguments without the "--" prefix are ignored, and a
// later occurrence of a key overrides an earlier one.
type ArgsSource struct {
	props map[string]string
}

// NewArgsSource parses args, typically os.Args[1:].
func NewArgsSource(args []string) *ArgsSource {
	props := make(map[string]string)
	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") || arg == "--" {
			continue
		}
		kv := strings.TrimPrefix(arg, "--")
		key, value, found := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !found {
			value = "true"
		}
		props[key] = value
	}
	return &ArgsSource{props: props}
}

func (s *ArgsSource) Name() string { return "command-line" }

func (s *ArgsSource) Lookup(key string) (Value, bool) {
	v, ok := s.props[key]
	if !ok {
		return Value{}, false
	}
	return String(v), true
}

func (s *ArgsSource) Keys() []string { return sortedKeys(s.props) }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
