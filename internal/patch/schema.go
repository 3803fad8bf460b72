package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/snnyvrz/bookstore-api/internal/validation"
)

// Field describes one patchable member of a projection of type T: how to
// parse a raw value into it, how to validate it and where it lives.
type Field[T any] struct {
	name     string
	rules    string
	nullable bool

	set   func(t *T, raw json.RawMessage) error
	clear func(t *T)
	equal func(t *T, raw json.RawMessage) (bool, error)
	value func(t *T) (any, bool)
}

func (f Field[T]) Name() string { return f.name }

// Value declares a required field. ref returns the address of the
// projection's pointer member; a nil pointer means the field is absent.
// rules is a validator rule string checked whenever the field is present.
func Value[T any, V comparable](name, rules string, ref func(*T) **V) Field[T] {
	return Field[T]{
		name:  name,
		rules: rules,
		set: func(t *T, raw json.RawMessage) error {
			v, err := decode[V](raw)
			if err != nil {
				return err
			}
			*ref(t) = &v
			return nil
		},
		clear: func(t *T) {
			*ref(t) = nil
		},
		equal: func(t *T, raw json.RawMessage) (bool, error) {
			cur := *ref(t)
			if isNull(raw) {
				return cur == nil, nil
			}
			v, err := decode[V](raw)
			if err != nil {
				return false, err
			}
			return cur != nil && *cur == v, nil
		},
		value: func(t *T) (any, bool) {
			cur := *ref(t)
			if cur == nil {
				return nil, false
			}
			return *cur, true
		},
	}
}

// Nullable declares a field that may be cleared with null or remove.
func Nullable[T any, V comparable](name, rules string, ref func(*T) **V) Field[T] {
	f := Value(name, rules, ref)
	f.nullable = true
	return f
}

type Schema[T any] struct {
	fields []Field[T]
	index  map[string]int
}

func NewSchema[T any](fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		s.index[strings.ToLower(f.name)] = i
	}
	return s
}

func (s *Schema[T]) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		names = append(names, f.name)
	}
	return names
}

// Result is the outcome of applying a patch document. Value is always set,
// even when some operations failed.
type Result[T any] struct {
	Value   T
	Touched []string
	Errors  []validation.FieldError
}

func (r Result[T]) IsTouched(name string) bool {
	for _, t := range r.Touched {
		if t == name {
			return true
		}
	}
	return false
}

// Apply runs ops in order against a copy of target. A failing operation is
// recorded and skipped; the remaining operations still run.
func (s *Schema[T]) Apply(target T, ops []Operation) Result[T] {
	res := Result[T]{Value: target}

	for _, op := range ops {
		f, ok := s.lookup(op.Path)
		if !ok {
			res.Errors = append(res.Errors, validation.FieldError{
				Field:   op.Path,
				Rule:    "path",
				Message: fmt.Sprintf("the target location %q is not a known field", op.Path),
			})
			continue
		}

		if err := s.applyOne(&res.Value, f, op); err != nil {
			res.Errors = append(res.Errors, *err)
			continue
		}

		if op.Op != OpTest && !res.IsTouched(f.name) {
			res.Touched = append(res.Touched, f.name)
		}
	}

	return res
}

func (s *Schema[T]) applyOne(t *T, f Field[T], op Operation) *validation.FieldError {
	fail := func(rule, format string, args ...any) *validation.FieldError {
		return &validation.FieldError{Field: f.name, Rule: rule, Message: fmt.Sprintf(format, args...)}
	}

	switch op.Op {
	case OpAdd, OpReplace:
		if op.Value == nil {
			return fail("value", "%s operation on %s requires a value", op.Op, f.name)
		}
		if isNull(op.Value) {
			if !f.nullable {
				return fail("required", "%s cannot be null", f.name)
			}
			f.clear(t)
			return nil
		}
		if err := f.set(t, op.Value); err != nil {
			return fail("type", "%s %s", f.name, err)
		}
		return nil

	case OpRemove:
		if !f.nullable {
			return fail("required", "%s is required and cannot be removed", f.name)
		}
		f.clear(t)
		return nil

	case OpTest:
		if op.Value == nil {
			return fail("value", "test operation on %s requires a value", f.name)
		}
		ok, err := f.equal(t, op.Value)
		if err != nil {
			return fail("type", "%s %s", f.name, err)
		}
		if !ok {
			return fail("test", "the current value of %s does not match the test value", f.name)
		}
		return nil

	case OpMove, OpCopy:
		return fail("op", "%s operation is not supported", op.Op)
	}

	return fail("op", "unknown operation %q", op.Op)
}

// Validate checks every present field against its rules.
func (s *Schema[T]) Validate(target T) []validation.FieldError {
	var errs []validation.FieldError
	for _, f := range s.fields {
		if f.rules == "" {
			continue
		}
		v, ok := f.value(&target)
		if !ok {
			continue
		}
		errs = append(errs, validation.Var(f.name, v, f.rules)...)
	}
	return errs
}

func (s *Schema[T]) lookup(path string) (Field[T], bool) {
	name, ok := strings.CutPrefix(path, "/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return Field[T]{}, false
	}
	name = strings.NewReplacer("~1", "/", "~0", "~").Replace(name)

	i, ok := s.index[strings.ToLower(name)]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

// decode parses raw into V. Numeric fields also accept numbers written as
// JSON strings.
func decode[V any](raw json.RawMessage) (V, error) {
	var v V
	err := json.Unmarshal(raw, &v)
	if err == nil {
		return v, nil
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		s = strings.TrimSpace(s)
		if s != "" && s != "null" && json.Unmarshal([]byte(s), &v) == nil {
			return v, nil
		}
	}

	return v, fmt.Errorf("must be %s", kindOf(v))
}

func kindOf(v any) string {
	switch v.(type) {
	case string:
		return "a string"
	case int, int32, int64:
		return "an integer"
	case float32, float64:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("a %T", v)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
