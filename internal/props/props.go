// Package props implements the ordered line-item property list.
//
// Property names are unique case-insensitively; insertion order is the order
// the caller first supplied each name.
package props

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Property is one name/value pair attached to a draft order line item.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// List is an ordered set of properties keyed case-insensitively by name.
// The zero value is ready to use.
type List struct {
	items []Property
	index map[string]int
}

func (l *List) key(name string) string { return strings.ToLower(name) }

// Len returns the number of properties.
func (l *List) Len() int { return len(l.items) }

// Items returns the properties in insertion order.
func (l *List) Items() []Property { return l.items }

// Has reports whether a property with the given name exists, ignoring case.
func (l *List) Has(name string) bool {
	_, ok := l.index[l.key(name)]
	return ok
}

// Add upserts a property. An existing entry keeps its position and gets the
// new value and name spelling; a new entry is appended.
func (l *List) Add(name, value string) {
	if name == "" {
		return
	}
	if l.index == nil {
		l.index = make(map[string]int)
	}
	k := l.key(name)
	if i, ok := l.index[k]; ok {
		l.items[i] = Property{Name: name, Value: value}
		return
	}
	l.index[k] = len(l.items)
	l.items = append(l.items, Property{Name: name, Value: value})
}

// Delete removes the property with the given name, ignoring case.
func (l *List) Delete(name string) {
	k := l.key(name)
	i, ok := l.index[k]
	if !ok {
		return
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	delete(l.index, k)
	for j := i; j < len(l.items); j++ {
		l.index[l.key(l.items[j].Name)] = j
	}
}

// UnmarshalJSON accepts both property forms storefronts send: a JSON object
// (insertion order preserved, empty keys skipped) or an array of {name,
// value} entries (entries without a string name skipped). Scalar values are
// stringified; null becomes the empty string.
func (l *List) UnmarshalJSON(b []byte) error {
	*l = List{}
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	switch trimmed[0] {
	case '{':
		return l.decodeObject(trimmed)
	case '[':
		return l.decodeArray(trimmed)
	default:
		return fmt.Errorf("properties must be an object or an array")
	}
}

// decodeObject walks the token stream so that key order survives decoding.
func (l *List) decodeObject(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	if _, err := dec.Token(); err != nil { // opening brace
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if name == "" {
			continue
		}
		l.Add(name, stringify(raw))
	}
	return nil
}

func (l *List) decodeArray(b []byte) error {
	var entries []struct {
		Name  json.RawMessage `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Name) == 0 || e.Name[0] != '"' {
			continue
		}
		var name string
		if err := json.Unmarshal(e.Name, &name); err != nil {
			return err
		}
		if name == "" {
			continue
		}
		l.Add(name, stringify(e.Value))
	}
	return nil
}

// MarshalJSON emits the array form used by the Admin REST schema.
func (l List) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

// stringify renders a raw JSON value as a property value string.
func stringify(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}
