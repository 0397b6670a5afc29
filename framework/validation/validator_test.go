package validation_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/km-arc/go-verdure/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts the validator passes for the given data/rules.
func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Fails() {
			t.Errorf("expected PASS, got FAIL: %+v", v.Errors().Bag)
		}
	})
}

// fail asserts the validator fails with an error on the given field.
func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Passes() {
			t.Errorf("expected FAIL on field %q, but validator PASSED", field)
		}
		if v.Errors().First(field) == "" {
			t.Errorf("expected error on field %q, none found: %+v", field, v.Errors().Bag)
		}
	})
}

// ── required ─────────────────────────────────────────────────────────────────

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"app.name": "required"}

	pass(t, "non-empty value", map[string]string{"app.name": "demo"}, r)
	fail(t, "empty string", "app.name", map[string]string{"app.name": ""}, r)
	fail(t, "whitespace only", "app.name", map[string]string{"app.name": "   "}, r)
	fail(t, "missing key", "app.name", map[string]string{}, r)
}

func TestValidation_Required_MessageFormat(t *testing.T) {
	v := validation.Make(map[string]string{"app.name": ""}, validation.Rules{"app.name": "required"})
	_ = v.Fails()
	msg := v.Errors().First("app.name")
	expected := "The app.name field is required."
	if msg != expected {
		t.Errorf("message: got %q want %q", msg, expected)
	}
}

// ── email / url ───────────────────────────────────────────────────────────────

func TestValidation_Email(t *testing.T) {
	r := validation.Rules{"mail.from": "email"}

	pass(t, "valid email", map[string]string{"mail.from": "ops@example.com"}, r)
	pass(t, "subdomain", map[string]string{"mail.from": "ops@mail.example.co.uk"}, r)
	fail(t, "no @ sign", "mail.from", map[string]string{"mail.from": "notanemail"}, r)
	fail(t, "no domain", "mail.from", map[string]string{"mail.from": "ops@"}, r)
}

func TestValidation_URL(t *testing.T) {
	r := validation.Rules{"db.url": "url"}

	pass(t, "http", map[string]string{"db.url": "http://example.com"}, r)
	pass(t, "https with query", map[string]string{"db.url": "https://example.com/path?q=1"}, r)
	pass(t, "postgres scheme", map[string]string{"db.url": "postgres://user@localhost:5432/app"}, r)
	fail(t, "no scheme", "db.url", map[string]string{"db.url": "example.com"}, r)
	fail(t, "no host", "db.url", map[string]string{"db.url": "http://"}, r)
}

// ── min / max / size / between ───────────────────────────────────────────────

func TestValidation_Min_Length(t *testing.T) {
	r := validation.Rules{"app.name": "min:3"}

	pass(t, "exactly 3", map[string]string{"app.name": "abc"}, r)
	pass(t, "more than 3", map[string]string{"app.name": "abcde"}, r)
	fail(t, "less than 3", "app.name", map[string]string{"app.name": "ab"}, r)
	fail(t, "empty", "app.name", map[string]string{"app.name": ""}, r)
}

func TestValidation_Max_Length(t *testing.T) {
	r := validation.Rules{"app.code": "max:5"}

	pass(t, "exactly 5", map[string]string{"app.code": "hello"}, r)
	fail(t, "more than 5", "app.code", map[string]string{"app.code": "toolong"}, r)
}

func TestValidation_Size_Length(t *testing.T) {
	r := validation.Rules{"app.region": "size:4"}

	pass(t, "exactly 4", map[string]string{"app.region": "euw1"}, r)
	fail(t, "too short", "app.region", map[string]string{"app.region": "eu1"}, r)
	fail(t, "too long", "app.region", map[string]string{"app.region": "euwest"}, r)
}

func TestValidation_Between_Length(t *testing.T) {
	r := validation.Rules{"app.key": "between:4,6"}

	pass(t, "min boundary", map[string]string{"app.key": "1234"}, r)
	pass(t, "max boundary", map[string]string{"app.key": "123456"}, r)
	fail(t, "too short", "app.key", map[string]string{"app.key": "123"}, r)
	fail(t, "too long", "app.key", map[string]string{"app.key": "1234567"}, r)
}

func TestValidation_SizeRulesAreNumericForNumbers(t *testing.T) {
	r := validation.Rules{"server.port": "integer|between:1,65535"}

	pass(t, "typical port", map[string]string{"server.port": "8080"}, r)
	pass(t, "upper bound", map[string]string{"server.port": "65535"}, r)
	fail(t, "zero", "server.port", map[string]string{"server.port": "0"}, r)
	fail(t, "too large", "server.port", map[string]string{"server.port": "70000"}, r)

	pass(t, "numeric min", map[string]string{"pool.size": "10"}, validation.Rules{"pool.size": "numeric|min:2"})
	fail(t, "numeric max", "pool.size", map[string]string{"pool.size": "100"}, validation.Rules{"pool.size": "integer|max:64"})
}

func TestValidation_Min_Unicode(t *testing.T) {
	// "日本語" = 3 runes
	pass(t, "unicode rune count", map[string]string{"app.name": "日本語"}, validation.Rules{"app.name": "min:3"})
	fail(t, "unicode rune count too short", "app.name", map[string]string{"app.name": "日本"}, validation.Rules{"app.name": "min:3"})
}

// ── numeric / integer / boolean ───────────────────────────────────────────────

func TestValidation_Numeric(t *testing.T) {
	r := validation.Rules{"cache.ratio": "numeric"}

	pass(t, "integer", map[string]string{"cache.ratio": "42"}, r)
	pass(t, "float", map[string]string{"cache.ratio": "3.14"}, r)
	pass(t, "negative", map[string]string{"cache.ratio": "-5.5"}, r)
	fail(t, "string", "cache.ratio", map[string]string{"cache.ratio": "abc"}, r)
	fail(t, "mixed", "cache.ratio", map[string]string{"cache.ratio": "12abc"}, r)
}

func TestValidation_Integer(t *testing.T) {
	r := validation.Rules{"pool.size": "integer"}

	pass(t, "positive int", map[string]string{"pool.size": "10"}, r)
	pass(t, "negative int", map[string]string{"pool.size": "-3"}, r)
	fail(t, "float", "pool.size", map[string]string{"pool.size": "3.14"}, r)
	fail(t, "string", "pool.size", map[string]string{"pool.size": "abc"}, r)
}

func TestValidation_Boolean(t *testing.T) {
	r := validation.Rules{"app.debug": "boolean"}

	for _, v := range []string{"true", "false", "1", "0", "yes", "no", "on", "off", "True", "OFF"} {
		pass(t, "boolean "+v, map[string]string{"app.debug": v}, r)
	}
	fail(t, "invalid bool", "app.debug", map[string]string{"app.debug": "maybe"}, r)
}

// ── in / not_in ───────────────────────────────────────────────────────────────

func TestValidation_In(t *testing.T) {
	r := validation.Rules{"logging.level": "in:debug,info,warn,error"}

	pass(t, "debug", map[string]string{"logging.level": "debug"}, r)
	pass(t, "error", map[string]string{"logging.level": "error"}, r)
	fail(t, "trace not in list", "logging.level", map[string]string{"logging.level": "trace"}, r)
	fail(t, "empty not in list", "logging.level", map[string]string{"logging.level": ""}, r)
}

func TestValidation_NotIn(t *testing.T) {
	r := validation.Rules{"app.env": "not_in:legacy,retired"}

	pass(t, "production", map[string]string{"app.env": "production"}, r)
	fail(t, "legacy", "app.env", map[string]string{"app.env": "legacy"}, r)
}

// ── same / different ─────────────────────────────────────────────────────────

func TestValidation_Same(t *testing.T) {
	r := validation.Rules{"replica.schema": "same:primary.schema"}

	pass(t, "same value", map[string]string{"primary.schema": "app", "replica.schema": "app"}, r)
	fail(t, "different value", "replica.schema", map[string]string{"primary.schema": "app", "replica.schema": "other"}, r)
}

func TestValidation_Different(t *testing.T) {
	r := validation.Rules{"admin.port": "different:server.port"}

	pass(t, "different values", map[string]string{"server.port": "8080", "admin.port": "9090"}, r)
	fail(t, "same value", "admin.port", map[string]string{"server.port": "8080", "admin.port": "8080"}, r)
}

// ── alpha / alpha_num / alpha_dash / regex ────────────────────────────────────

func TestValidation_Alpha(t *testing.T) {
	r := validation.Rules{"app.name": "alpha"}

	pass(t, "letters only", map[string]string{"app.name": "Verdure"}, r)
	fail(t, "with numbers", "app.name", map[string]string{"app.name": "app123"}, r)
}

func TestValidation_AlphaNum(t *testing.T) {
	r := validation.Rules{"node.id": "alpha_num"}

	pass(t, "letters and numbers", map[string]string{"node.id": "node42"}, r)
	fail(t, "with dash", "node.id", map[string]string{"node.id": "node-42"}, r)
}

func TestValidation_AlphaDash(t *testing.T) {
	r := validation.Rules{"node.id": "alpha_dash"}

	pass(t, "letters-numbers_underscore", map[string]string{"node.id": "node_a-42"}, r)
	fail(t, "with dot", "node.id", map[string]string{"node.id": "node.a"}, r)
}

func TestValidation_Regex(t *testing.T) {
	r := validation.Rules{"app.version": `regex:^\d+\.\d+\.\d+$`}

	pass(t, "semver", map[string]string{"app.version": "1.2.3"}, r)
	fail(t, "partial", "app.version", map[string]string{"app.version": "1.2"}, r)
}

// ── gt / gte / lt / lte ───────────────────────────────────────────────────────

func TestValidation_Comparisons(t *testing.T) {
	pass(t, "gt", map[string]string{"workers": "5"}, validation.Rules{"workers": "gt:0"})
	fail(t, "gt boundary", "workers", map[string]string{"workers": "0"}, validation.Rules{"workers": "gt:0"})
	pass(t, "gte boundary", map[string]string{"workers": "1"}, validation.Rules{"workers": "gte:1"})
	fail(t, "gte", "workers", map[string]string{"workers": "0"}, validation.Rules{"workers": "gte:1"})
	pass(t, "lt", map[string]string{"ratio": "0.5"}, validation.Rules{"ratio": "lt:1"})
	fail(t, "lt boundary", "ratio", map[string]string{"ratio": "1"}, validation.Rules{"ratio": "lt:1"})
	pass(t, "lte boundary", map[string]string{"ratio": "1"}, validation.Rules{"ratio": "lte:1"})
	fail(t, "lte", "ratio", map[string]string{"ratio": "1.5"}, validation.Rules{"ratio": "lte:1"})
}

// ── nullable / sometimes ──────────────────────────────────────────────────────

func TestValidation_Nullable(t *testing.T) {
	r := validation.Rules{"app.banner": "nullable|min:10"}
	pass(t, "empty with nullable", map[string]string{"app.banner": ""}, r)
	fail(t, "present and short", "app.banner", map[string]string{"app.banner": "hi"}, r)
}

func TestValidation_Sometimes(t *testing.T) {
	r := validation.Rules{"app.nickname": "sometimes|min:3"}
	pass(t, "absent field", map[string]string{}, r)
	pass(t, "present and valid", map[string]string{"app.nickname": "coolname"}, r)
	fail(t, "present but empty", "app.nickname", map[string]string{"app.nickname": ""}, r)
}

func TestValidation_UnknownRuleFails(t *testing.T) {
	fail(t, "typo in rule", "app.name", map[string]string{"app.name": "x"}, validation.Rules{"app.name": "requird"})
}

// ── Chained / multiple rules ──────────────────────────────────────────────────

func TestValidation_Chained(t *testing.T) {
	rules := validation.Rules{
		"mail.from":   "required|email",
		"app.name":    "required|min:3",
		"server.port": "required|integer|gte:1024",
	}

	pass(t, "all valid", map[string]string{
		"mail.from":   "ops@example.com",
		"app.name":    "demo",
		"server.port": "8080",
	}, rules)

	v := validation.Make(map[string]string{
		"mail.from":   "not-an-email",
		"app.name":    "x",
		"server.port": "80",
	}, rules)

	if v.Passes() {
		t.Fatal("expected validation to fail")
	}
	errs := v.Errors()
	for _, f := range []string{"mail.from", "app.name", "server.port"} {
		if errs.First(f) == "" {
			t.Errorf("expected error on %s", f)
		}
		if n := len(errs.Bag[f]); n != 1 {
			t.Errorf("%s: want 1 message (bail), got %d", f, n)
		}
	}
}

// ── Errors bag ────────────────────────────────────────────────────────────────

func TestErrors_First(t *testing.T) {
	v := validation.Make(
		map[string]string{"mail.from": "bad"},
		validation.Rules{"mail.from": "required|email"},
	)
	_ = v.Fails()
	if v.Errors().First("mail.from") == "" {
		t.Error("First() should return error message")
	}
	if v.Errors().First("nonexistent") != "" {
		t.Error("First('nonexistent') should return empty string")
	}
}

func TestErrors_IsAnErrorWithSortedMessages(t *testing.T) {
	err := validation.Validate(
		map[string]string{"b.key": "", "a.key": ""},
		validation.Rules{"b.key": "required", "a.key": "required"},
	)
	if err == nil {
		t.Fatal("expected an error")
	}
	var bag *validation.Errors
	if !errors.As(err, &bag) {
		t.Fatalf("want *validation.Errors, got %T", err)
	}
	want := "validation failed: The a.key field is required. The b.key field is required."
	if err.Error() != want {
		t.Errorf("got %q want %q", err.Error(), want)
	}
	if got := bag.Fields(); len(got) != 2 || got[0] != "a.key" {
		t.Errorf("Fields() = %v", got)
	}
}

func TestValidate_NilOnSuccess(t *testing.T) {
	if err := validation.Validate(map[string]string{"k": "v"}, validation.Rules{"k": "required"}); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestErrors_JSONShape(t *testing.T) {
	v := validation.Make(map[string]string{"mail.from": ""}, validation.Rules{"mail.from": "required"})
	_ = v.Fails()

	raw, err := json.Marshal(v.Errors())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"errors":{"mail.from":["The mail.from field is required."]}}`
	if string(raw) != want {
		t.Errorf("got %s want %s", raw, want)
	}
}
