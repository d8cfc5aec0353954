package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldValue is a scalar that promotes to an ordered list once its key
// repeats. It marshals as a JSON string while scalar and as a JSON array
// after promotion.
type FieldValue struct {
	values []string
	list   bool
}

func (v FieldValue) IsList() bool {
	return v.list
}

func (v FieldValue) First() string {
	if len(v.values) == 0 {
		return ""
	}
	return v.values[0]
}

func (v FieldValue) Values() []string {
	out := make([]string, len(v.values))
	copy(out, v.values)
	return out
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	if v.list {
		return json.Marshal(v.values)
	}
	return json.Marshal(v.First())
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		v.values = []string{scalar}
		v.list = false
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("field value must be a string or a list of strings: %w", err)
	}
	v.values = list
	v.list = true
	return nil
}

// Fields is a key/value mapping that keeps first-seen key order and never
// overwrites: a repeated key accumulates its values into a list. All three
// normalizer components share this merge rule.
type Fields struct {
	keys  []string
	byKey map[string]FieldValue
}

func NewFields() *Fields {
	return &Fields{byKey: map[string]FieldValue{}}
}

func (f *Fields) Add(key, value string) {
	if f.byKey == nil {
		f.byKey = map[string]FieldValue{}
	}
	existing, ok := f.byKey[key]
	if !ok {
		f.keys = append(f.keys, key)
		f.byKey[key] = FieldValue{values: []string{value}}
		return
	}
	existing.values = append(existing.values, value)
	existing.list = true
	f.byKey[key] = existing
}

func (f *Fields) set(key string, value FieldValue) {
	if f.byKey == nil {
		f.byKey = map[string]FieldValue{}
	}
	if _, ok := f.byKey[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.byKey[key] = value
}

func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

func (f *Fields) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f *Fields) Get(key string) (FieldValue, bool) {
	if f == nil {
		return FieldValue{}, false
	}
	v, ok := f.byKey[key]
	return v, ok
}

func (f *Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valueJSON, err := json.Marshal(f.byKey[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	f.keys = nil
	f.byKey = map[string]FieldValue{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("fields must be a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("fields key must be a string")
		}
		var value FieldValue
		if err := dec.Decode(&value); err != nil {
			return err
		}
		f.set(key, value)
	}
	_, err = dec.Token()
	return err
}
