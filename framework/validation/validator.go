package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation messages per key.
// JSON output: {"errors": {"server.port": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the failing keys in sorted order.
func (e *Errors) Fields() []string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Error joins every message, ordered by key.
func (e *Errors) Error() string {
	var msgs []string
	for _, f := range e.Fields() {
		msgs = append(msgs, e.Bag[f]...)
	}
	return "validation failed: " + strings.Join(msgs, " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules maps a key to a pipe-separated rule string.
// e.g. Rules{"server.port": "required|integer|between:1,65535"}
type Rules map[string]string

// Validator validates a flat map of string values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a new Validator.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// Validate runs rules against data and returns nil or the *Errors bag.
//
//	if err := validation.Validate(values, rules); err != nil {
//	    return fmt.Errorf("server config: %w", err)
//	}
func Validate(data map[string]string, rules Rules) error {
	v := Make(data, rules)
	if v.Fails() {
		return v.errors
	}
	return nil
}

// Fails runs validation and returns true if any rule fails.
// Rules are evaluated once; later calls reuse the result.
func (v *Validator) Fails() bool {
	if !v.ran {
		v.validate()
		v.ran = true
	}
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) validate() {
	fields := make([]string, 0, len(v.rules))
	for field := range v.rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value, present := v.data[field]
		rules := splitRules(v.rules[field])
		numeric := hasRule(rules, "numeric") || hasRule(rules, "integer")

		for _, rule := range rules {
			// min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			if !v.applyRule(field, value, present, numeric, name, param) {
				break // bail on the first failure for this field
			}
		}
	}
}

func splitRules(s string) []string {
	var out []string
	for _, r := range strings.Split(s, "|") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if n, _, _ := strings.Cut(r, ":"); n == name {
			return true
		}
	}
	return false
}

var (
	alphaRe     = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// applyRule returns true if validation of the field should continue.
// With numeric set, min/max/size/between compare the value instead of its length.
func (v *Validator) applyRule(field, value string, present, numeric bool, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required.", field))
			return false
		}

	case "string":
		// configuration values are always strings

	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be a number.", field))
			return false
		}

	case "integer":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be an integer.", field))
			return false
		}

	case "boolean":
		switch strings.ToLower(value) {
		case "true", "false", "1", "0", "yes", "no", "on", "off":
		default:
			v.errors.add(field, fmt.Sprintf("The %s field must be true or false.", field))
			return false
		}

	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be a valid email address.", field))
			return false
		}

	case "url":
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			v.errors.add(field, fmt.Sprintf("The %s must be a valid URL.", field))
			return false
		}

	case "min":
		if numeric {
			n, _ := strconv.ParseFloat(param, 64)
			if f, _ := strconv.ParseFloat(value, 64); f < n {
				v.errors.add(field, fmt.Sprintf("The %s must be at least %s.", field, param))
				return false
			}
			break
		}
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			v.errors.add(field, fmt.Sprintf("The %s must be at least %d characters.", field, n))
			return false
		}

	case "max":
		if numeric {
			n, _ := strconv.ParseFloat(param, 64)
			if f, _ := strconv.ParseFloat(value, 64); f > n {
				v.errors.add(field, fmt.Sprintf("The %s may not be greater than %s.", field, param))
				return false
			}
			break
		}
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			v.errors.add(field, fmt.Sprintf("The %s may not be greater than %d characters.", field, n))
			return false
		}

	case "size":
		if numeric {
			n, _ := strconv.ParseFloat(param, 64)
			if f, _ := strconv.ParseFloat(value, 64); f != n {
				v.errors.add(field, fmt.Sprintf("The %s must be %s.", field, param))
				return false
			}
			break
		}
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) != n {
			v.errors.add(field, fmt.Sprintf("The %s must be %d characters.", field, n))
			return false
		}

	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			break
		}
		lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
		if numeric {
			min, _ := strconv.ParseFloat(lo, 64)
			max, _ := strconv.ParseFloat(hi, 64)
			if f, _ := strconv.ParseFloat(value, 64); f < min || f > max {
				v.errors.add(field, fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi))
				return false
			}
			break
		}
		min, _ := strconv.Atoi(lo)
		max, _ := strconv.Atoi(hi)
		l := utf8.RuneCountInString(value)
		if l < min || l > max {
			v.errors.add(field, fmt.Sprintf("The %s must be between %d and %d characters.", field, min, max))
			return false
		}

	case "in":
		found := false
		for _, a := range strings.Split(param, ",") {
			if strings.TrimSpace(a) == value {
				found = true
				break
			}
		}
		if !found {
			v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "not_in":
		for _, d := range strings.Split(param, ",") {
			if strings.TrimSpace(d) == value {
				v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
				return false
			}
		}

	case "same":
		if v.data[param] != value {
			v.errors.add(field, fmt.Sprintf("The %s and %s must match.", field, param))
			return false
		}

	case "different":
		if v.data[param] == value {
			v.errors.add(field, fmt.Sprintf("The %s and %s must be different.", field, param))
			return false
		}

	case "alpha":
		if !alphaRe.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters.", field))
			return false
		}

	case "alpha_num":
		if !alphaNumRe.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters and numbers.", field))
			return false
		}

	case "alpha_dash":
		if !alphaDashRe.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field))
			return false
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s format is invalid.", field))
			return false
		}

	case "nullable":
		// Empty values skip the remaining rules.
		if value == "" {
			return false
		}

	case "sometimes":
		// Absent keys skip the remaining rules.
		if !present {
			return false
		}

	case "gt":
		f, _ := strconv.ParseFloat(value, 64)
		t, _ := strconv.ParseFloat(param, 64)
		if f <= t {
			v.errors.add(field, fmt.Sprintf("The %s must be greater than %s.", field, param))
			return false
		}

	case "gte":
		f, _ := strconv.ParseFloat(value, 64)
		t, _ := strconv.ParseFloat(param, 64)
		if f < t {
			v.errors.add(field, fmt.Sprintf("The %s must be greater than or equal to %s.", field, param))
			return false
		}

	case "lt":
		f, _ := strconv.ParseFloat(value, 64)
		t, _ := strconv.ParseFloat(param, 64)
		if f >= t {
			v.errors.add(field, fmt.Sprintf("The %s must be less than %s.", field, param))
			return false
		}

	case "lte":
		f, _ := strconv.ParseFloat(value, 64)
		t, _ := strconv.ParseFloat(param, 64)
		if f > t {
			v.errors.add(field, fmt.Sprintf("The %s must be less than or equal to %s.", field, param))
			return false
		}

	default:
		v.errors.add(field, fmt.Sprintf("The %s has an unknown rule %q.", field, rule))
		return false
	}

	return true
}
