package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Format selects the parser for a configuration file.
type Format int

const (
	// FormatAuto picks a parser from the file extension, falling back to
	// trying TOML, YAML and Properties in that order.
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
	FormatProperties
	FormatDotenv
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatProperties:
		return "properties"
	case FormatDotenv:
		return "dotenv"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// DetectFormat maps a path's extension to a Format, or FormatAuto when the
// extension is not recognised.
func DetectFormat(path string) Format {
	base := strings.ToLower(filepath.Base(path))
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return FormatDotenv
	}
	switch filepath.Ext(base) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".properties":
		return FormatProperties
	case ".env":
		return FormatDotenv
	}
	return FormatAuto
}

// ── FileSource ────────────────────────────────────────────────────────────────

// FileSource holds the flattened contents of one configuration file. The
// file is read and parsed once, when the source is created.
type FileSource struct {
	path   string
	format Format
	props  map[string]string
}

// LoadFile reads and parses path. With FormatAuto the concrete format is
// chosen by DetectFormat or, failing that, by the first parser that accepts
// the content. Read and parse failures are *Error with Kind ErrKindFile.
//
//	src, err := config.LoadFile("config/app.yaml", config.FormatAuto)
func LoadFile(path string, format Format) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(ErrKindFile, path, "read failed", err)
	}

	if format == FormatAuto {
		format = DetectFormat(path)
	}

	var props map[string]string
	if format == FormatAuto {
		props, format, err = parseAny(data)
	} else {
		props, err = Parse(data, format)
	}
	if err != nil {
		return nil, newError(ErrKindFile, path, "parse "+format.String(), err)
	}
	return &FileSource{path: path, format: format, props: props}, nil
}

func (s *FileSource) Name() string { return s.format.String() + ":" + s.path }

func (s *FileSource) Lookup(key string) (Value, bool) {
	v, ok := s.props[key]
	if !ok {
		return Value{}, false
	}
	return String(v), true
}

func (s *FileSource) Keys() []string { return sortedKeys(s.props) }

// Path returns the file the source was loaded from.
func (s *FileSource) Path() string { return s.path }

// Format returns the format the file was parsed as.
func (s *FileSource) Format() Format { return s.format }

// Properties returns a copy of the flattened key/value pairs.
func (s *FileSource) Properties() map[string]string {
	out := make(map[string]string, len(s.props))
	for k, v := range s.props {
		out[k] = v
	}
	return out
}

// ── Parsing ───────────────────────────────────────────────────────────────────

var errNotMapping = errors.New("document is not a mapping")

// Parse flattens data in the given format into dot-joined keys.
// FormatAuto tries TOML, YAML and Properties in order.
func Parse(data []byte, format Format) (map[string]string, error) {
	switch format {
	case FormatTOML:
		return parseTOML(data)
	case FormatYAML:
		return parseYAML(data)
	case FormatProperties:
		return ParseProperties(string(data)), nil
	case FormatDotenv:
		return parseDotenv(data)
	case FormatAuto:
		props, _, err := parseAny(data)
		return props, err
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}

func parseAny(data []byte) (map[string]string, Format, error) {
	if props, err := parseTOML(data); err == nil {
		return props, FormatTOML, nil
	}
	if props, err := parseYAML(data); err == nil {
		return props, FormatYAML, nil
	}
	return ParseProperties(string(data)), FormatProperties, nil
}

func parseTOML(data []byte) (map[string]string, error) {
	var doc map[string]any
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten(out, "", doc)
	return out, nil
}

func parseYAML(data []byte) (map[string]string, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	switch m := doc.(type) {
	case nil:
		// empty document
	case map[string]any:
		flatten(out, "", m)
	case map[any]any:
		flatten(out, "", normalizeMap(m))
	default:
		return nil, errNotMapping
	}
	return out, nil
}

// parseDotenv maps APP_NAME to app.name so dotenv files answer the same
// keys as the other formats.
func parseDotenv(data []byte) (map[string]string, error) {
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[strings.ToLower(strings.ReplaceAll(k, "_", "."))] = v
	}
	return out, nil
}

func flatten(out map[string]string, prefix string, m map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch nested := v.(type) {
		case map[string]any:
			flatten(out, key, nested)
		case map[any]any:
			flatten(out, key, normalizeMap(nested))
		default:
			out[key] = scalarString(v)
		}
	}
}

func normalizeMap(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[fmt.Sprint(k)] = v
	}
	return out
}

// scalarString renders a decoded leaf. Arrays are comma-joined, null is the
// empty string, and tables nested inside arrays render as sorted k=v pairs.
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = scalarString(item)
		}
		return strings.Join(parts, ",")
	case []map[string]any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = scalarString(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + scalarString(t[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	case map[any]any:
		return scalarString(normalizeMap(t))
	default:
		return fmt.Sprint(t)
	}
}
