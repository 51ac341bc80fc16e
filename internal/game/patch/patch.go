// Package patch implements the copy-on-write deep merge used to fold partial
// update fragments onto authoritative records.
//
// Merge semantics: object-valued fields recurse, array- and scalar-valued
// fields present in the fragment replace the base field outright, and fields
// absent from the fragment leave the base untouched. A fragment decoded from
// JSON knows exactly which fields it carries, so an explicit false, 0, "", or
// [] is applied. A fragment built in code cannot tell an absent field from a
// zero one, so only its non-zero fields are applied.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"dario.cat/mergo"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Cloner is implemented by records that can produce a deep copy of themselves.
type Cloner[T any] interface {
	Clone() T
}

// Fragment is the JSON object form of a partial record as it arrived on the
// wire. A nil Fragment carries no field information.
type Fragment []byte

// UnmarshalJSON keeps the raw bytes. A JSON null yields a nil Fragment.
func (f *Fragment) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}
	*f = bytes.Clone(data)
	return nil
}

// MarshalJSON returns the raw bytes, or null for a nil Fragment.
func (f Fragment) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	return f, nil
}

// Without returns a copy of f lacking the given top-level keys.
//
// Postcondition: a nil f yields nil; a non-object f yields an error.
func (f Fragment) Without(keys ...string) (Fragment, error) {
	if f == nil {
		return nil, nil
	}
	fields, err := f.object()
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		delete(fields, k)
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("patch: re-encoding fragment: %w", err)
	}
	return out, nil
}

func (f Fragment) object() (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(f, &fields); err != nil {
		return nil, fmt.Errorf("patch: fragment is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, errors.New("patch: fragment is not a JSON object")
	}
	return fields, nil
}

// Apply returns a deep copy of base with the non-zero fields of fragment
// merged over it. Neither argument is modified, and the result shares no
// slices, maps, or pointers with either argument.
//
// Postcondition: on error the returned value is an unmodified clone of base.
func Apply[T Cloner[T]](base, fragment T) (T, error) {
	out := base.Clone()
	src := fragment.Clone()
	if err := mergo.Merge(&out, src, mergo.WithOverride); err != nil {
		return base.Clone(), fmt.Errorf("patch: merging fragment: %w", err)
	}
	return out, nil
}

// ApplyJSON returns base with every field present in f merged over it as an
// RFC 7386 merge patch. A null member clears the field.
//
// Postcondition: on error the returned value is an unmodified clone of base;
// otherwise the result shares nothing with base.
func ApplyJSON[T Cloner[T]](base T, f Fragment) (T, error) {
	if _, err := f.object(); err != nil {
		return base.Clone(), err
	}
	doc, err := json.Marshal(base)
	if err != nil {
		return base.Clone(), fmt.Errorf("patch: encoding base: %w", err)
	}
	merged, err := jsonpatch.MergePatch(doc, f)
	if err != nil {
		return base.Clone(), fmt.Errorf("patch: merging fragment: %w", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return base.Clone(), fmt.Errorf("patch: decoding merged record: %w", err)
	}
	return out, nil
}

// Merge applies fields when the change was decoded from JSON and the
// non-zero fields of typed otherwise.
func Merge[T Cloner[T]](base, typed T, fields Fragment) (T, error) {
	if fields != nil {
		return ApplyJSON(base, fields)
	}
	return Apply(base, typed)
}
