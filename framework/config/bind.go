package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/km-arc/go-verdure/framework/validation"
)

// Getter is the read side of a Manager used by Bind.
type Getter interface {
	Get(key string) (Value, bool)
}

var durationType = reflect.TypeFor[time.Duration]()

// Bind fills the struct pointed to by target from keys under prefix.
//
// Each exported field reads "<prefix>.<name>", where name comes from the
// `config` tag or, without one, is the snake_case field name. `config:"-"`
// skips a field. A `default` tag supplies the value when the key is absent;
// otherwise an absent key leaves the field untouched (pointer fields stay nil).
// Nested structs bind under "<prefix>.<name>". A `validate` tag holds
// validation rules checked against the resolved strings once every field is
// set.
//
//	type ServerConfig struct {
//	    Host    string        `config:"host" default:"0.0.0.0"`
//	    Port    int           `config:"port" default:"8080" validate:"integer|between:1,65535"`
//	    Timeout time.Duration `default:"30s"`
//	    Tags    []string
//	    TLS     *bool
//	}
//
//	var sc ServerConfig
//	err := config.Bind(manager, "server", &sc)
//
// Supported field kinds: string, bool, signed and unsigned integers, floats,
// time.Duration, slices of those (comma separated) and pointers to them.
// Failures are *Error with Kind ErrKindBinding.
func Bind(g Getter, prefix string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return newError(ErrKindBinding, prefix, fmt.Sprintf("target must be a non-nil struct pointer, got %T", target), nil)
	}

	b := &binder{g: g, values: map[string]string{}, rules: validation.Rules{}}
	if err := b.bindStruct(prefix, rv.Elem()); err != nil {
		return err
	}
	if len(b.rules) > 0 {
		if err := validation.Validate(b.values, b.rules); err != nil {
			return newError(ErrKindBinding, prefix, "validation failed", err)
		}
	}
	return nil
}

type binder struct {
	g      Getter
	values map[string]string
	rules  validation.Rules
}

func (b *binder) bindStruct(prefix string, sv reflect.Value) error {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("config")
		if name == "-" {
			continue
		}
		if name == "" {
			name = snakeCase(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		fv := sv.Field(i)
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeFor[time.Time]() {
			if err := b.bindStruct(key, fv); err != nil {
				return err
			}
			continue
		}

		if rules := f.Tag.Get("validate"); rules != "" {
			b.rules[key] = rules
		}

		raw, ok := b.lookup(key)
		if !ok {
			def, hasDefault := f.Tag.Lookup("default")
			if !hasDefault {
				continue
			}
			raw = def
		}
		b.values[key] = raw

		if err := setField(fv, raw); err != nil {
			return newError(ErrKindBinding, key, fmt.Sprintf("cannot set %s field %s", f.Type, f.Name), err)
		}
	}
	return nil
}

func (b *binder) lookup(key string) (string, bool) {
	v, ok := b.g.Get(key)
	if !ok {
		return "", false
	}
	return v.String(), true
}

func setField(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		v, ok := ParseBool(strings.TrimSpace(raw))
		if !ok {
			return fmt.Errorf("invalid boolean %q", raw)
		}
		fv.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(v)
	case reflect.Slice:
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		slice := reflect.MakeSlice(fv.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := setField(slice.Index(i), p); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		fv.Set(slice)
	case reflect.Pointer:
		elem := reflect.New(fv.Type().Elem())
		if err := setField(elem.Elem(), raw); err != nil {
			return err
		}
		fv.Set(elem)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}

// snakeCase converts Go field names: MaxConns → max_conns, DBHost → db_host.
func snakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sb.WriteByte('_')
				}
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// As resolves key and parses it into T using the same rules as Bind.
// A missing key is ErrKindNotFound; an unparsable value is ErrKindInvalid.
//
//	port, err := config.As[uint16](m, "server.port")
//	timeout, err := config.As[time.Duration](m, "http.timeout")
func As[T any](g Getter, key string) (T, error) {
	var out T
	v, ok := g.Get(key)
	if !ok {
		return out, newError(ErrKindNotFound, key, "", nil)
	}
	if err := setField(reflect.ValueOf(&out).Elem(), v.String()); err != nil {
		return out, newError(ErrKindInvalid, key, fmt.Sprintf("cannot parse %q as %T", v.String(), out), err)
	}
	return out, nil
}
