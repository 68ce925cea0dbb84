// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for citecheck: parsed
// citations, candidate metadata records, per-citation results, and
// configuration.
package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Field is an optional bibliographic value. It separates three states that
// matter when validating a citation: absent (Valid is false), present but
// empty, and present with a value. Absent and empty are never treated as
// "known incorrect".
type Field[T any] struct {
	Value T
	Valid bool
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Valid: true}
}

// IsZero reports whether the field is absent. encoding/json uses it for
// omitzero so absent fields disappear from output.
func (f Field[T]) IsZero() bool { return !f.Valid }

// Filled reports whether the field is present and carries a non-blank value.
func (f Field[T]) Filled() bool {
	if !f.Valid {
		return false
	}
	switch v := any(f.Value).(type) {
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// MarshalJSON encodes an absent field as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON decodes null as absent and anything else as present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Field[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Field[T]{Value: v, Valid: true}
	return nil
}

// Value is a typed field value: free text for scalar fields or an ordered
// name list for authors. It encodes as a JSON string or array accordingly.
type Value struct {
	Text  string
	Names []string
}

// TextValue wraps a scalar field value.
func TextValue(s string) Value { return Value{Text: s} }

// NamesValue wraps an author list.
func NamesValue(names []string) Value {
	if names == nil {
		names = []string{}
	}
	return Value{Names: names}
}

// IsNames reports whether v holds a name list.
func (v Value) IsNames() bool { return v.Names != nil }

// IsEmpty reports whether v carries nothing worth comparing.
func (v Value) IsEmpty() bool {
	if v.IsNames() {
		return !Some(v.Names).Filled()
	}
	return strings.TrimSpace(v.Text) == ""
}

// String renders the value for logs and tables.
func (v Value) String() string {
	if v.IsNames() {
		return strings.Join(v.Names, "; ")
	}
	return v.Text
}

// Ptr returns a pointer to a copy of v.
func (v Value) Ptr() *Value { return &v }

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsNames() {
		return json.Marshal(v.Names)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return err
		}
		*v = NamesValue(names)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = TextValue(s)
	return nil
}
