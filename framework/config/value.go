package config

import (
	"sort"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindArray
	KindObject
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a configuration value. Sources deliver strings; runtime overrides
// may carry any variant. The As* accessors coerce between variants and
// report false when no coercion applies.
type Value struct {
	kind ValueKind
	s    string
	i    int64
	f    float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

func String(s string) Value                { return Value{kind: KindString, s: s} }
func Int(i int64) Value                    { return Value{kind: KindInt, i: i} }
func Float(f float64) Value                { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value                    { return Value{kind: KindBool, b: b} }
func Array(items ...Value) Value           { return Value{kind: KindArray, arr: items} }
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// AsString formats scalars. Arrays and objects have no string form.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindInt:
		return strconv.FormatInt(v.i, 10), true
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	}
	return "", false
}

// AsInt accepts ints and strings holding a base-10 integer.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindString:
		i, err := strconv.ParseInt(v.s, 10, 64)
		return i, err == nil
	}
	return 0, false
}

// AsFloat accepts floats, ints and numeric strings.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		return f, err == nil
	}
	return 0, false
}

// AsBool accepts bools, ints (non-zero is true) and the case-insensitive
// tokens true/yes/on/1 and false/no/off/0.
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindInt:
		return v.i != 0, true
	case KindString:
		return ParseBool(v.s)
	}
	return false, false
}

// AsArray returns the items of an array value.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject returns the fields of an object value.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// String renders any value for logs and inspection; arrays are
// comma-joined and objects are printed as sorted key=value pairs.
func (v Value) String() string {
	if s, ok := v.AsString(); ok {
		return s
	}
	switch v.kind {
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + v.obj[k].String()
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return ""
}

// ParseBool reads the boolean token sets used throughout configuration.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}
