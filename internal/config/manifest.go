package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entry maps one source document to its destination under the public directory.
type Entry struct {
	Source string
	Dest   string
}

// Manifest is the ordered list of pages to generate. It is stored as a JSON
// object whose keys are source paths; key order in the document is the build order.
type Manifest []Entry

// MarshalJSON encodes the manifest as an object, preserving entry order.
func (m Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Source)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Dest)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into entries in document order.
// Duplicate source keys and non-string destinations are rejected.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("manifest must be a JSON object, got %v", tok)
	}

	entries := Manifest{}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		source, ok := tok.(string)
		if !ok {
			return fmt.Errorf("manifest key must be a string, got %v", tok)
		}
		if _, dup := seen[source]; dup {
			return fmt.Errorf("duplicate manifest source %q", source)
		}
		seen[source] = struct{}{}

		var dest string
		if err := dec.Decode(&dest); err != nil {
			return fmt.Errorf("manifest destination for %q: %w", source, err)
		}
		entries = append(entries, Entry{Source: source, Dest: dest})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = entries
	return nil
}
