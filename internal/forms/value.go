package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindText
	KindMulti
)

// Value is the closed set of shapes a form field can hold: nothing, a single
// string, or a list of strings (checkboxes and multi-selects).
type Value struct {
	kind  Kind
	text  string
	multi []string
}

// None returns the empty value.
func None() Value { return Value{} }

// Text wraps a scalar string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Multi wraps a list of strings. A nil list is still a Multi.
func Multi(values ...string) Value {
	cp := make([]string, len(values))
	copy(cp, values)
	return Value{kind: KindMulti, multi: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNone() bool  { return v.kind == KindNone }
func (v Value) IsText() bool  { return v.kind == KindText }
func (v Value) IsMulti() bool { return v.kind == KindMulti }

// String returns the scalar text, or "" for non-text values.
func (v Value) String() string {
	if v.kind == KindText {
		return v.text
	}
	return ""
}

// Items returns a copy of the list for Multi values and nil otherwise.
func (v Value) Items() []string {
	if v.kind != KindMulti {
		return nil
	}
	out := make([]string, len(v.multi))
	copy(out, v.multi)
	return out
}

// List coerces the value to a list: Text becomes a one-element list.
func (v Value) List() []string {
	switch v.kind {
	case KindText:
		return []string{v.text}
	case KindMulti:
		return v.Items()
	default:
		return nil
	}
}

// IsEmpty reports whether the value counts as unanswered: None, "" or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindText:
		return v.text == ""
	case KindMulti:
		return len(v.multi) == 0
	default:
		return true
	}
}

// StrictEquals is scalar identity. Two lists never compare equal, the same way
// two distinct arrays never do in the browser code that produces these states.
func (v Value) StrictEquals(other Value) bool {
	switch {
	case v.kind == KindNone && other.kind == KindNone:
		return true
	case v.kind == KindText && other.kind == KindText:
		return v.text == other.text
	default:
		return false
	}
}

// Flatten renders the value as a single string, joining lists with ", ".
func (v Value) Flatten() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindMulti:
		return strings.Join(v.multi, ", ")
	default:
		return ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindMulti:
		if v.multi == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.multi)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, strings and string arrays. Booleans and numbers
// keep their literal text; objects keep their raw JSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = None()
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			var item Value
			if err := item.UnmarshalJSON(r); err != nil {
				return err
			}
			if item.kind == KindMulti {
				return fmt.Errorf("forms: nested arrays are not supported")
			}
			if item.kind == KindText {
				items = append(items, item.text)
			}
		}
		*v = Value{kind: KindMulti, multi: items}
	case '{':
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err != nil {
			return err
		}
		*v = Text(compact.String())
	default:
		// true, false, numbers
		var probe any
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return err
		}
		*v = Text(string(trimmed))
	}
	return nil
}

// State is the in-progress answer set of one form session, keyed by field name.
type State map[string]Value

// Get returns the value for name, or None when unset.
func (s State) Get(name string) Value {
	if s == nil {
		return None()
	}
	return s[name]
}

// Has reports whether name was ever set, even to None.
func (s State) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Clone returns an independent copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		if v.kind == KindMulti {
			v = Multi(v.multi...)
		}
		out[k] = v
	}
	return out
}
