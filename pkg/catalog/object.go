package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object that remembers the order of its keys and keeps
// every value it does not understand verbatim. Setting an existing key
// replaces the value in place; setting a new key appends it.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// Keys returns the object's keys in document order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Has reports whether key is present (even if its value is null).
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Get decodes the value stored at key into v. It reports false when the key is
// missing or holds null, leaving v untouched.
func (o *Object) Get(key string, v any) (bool, error) {
	raw, ok := o.values[key]
	if !ok || isNull(raw) {
		return false, nil
	}

	err := json.Unmarshal(raw, v)
	if err != nil {
		return false, fmt.Errorf("unable to decode %q: %w", key, err)
	}

	return true, nil
}

// Set encodes v and stores it at key.
func (o *Object) Set(key string, v any) error {
	raw, err := marshal(v)
	if err != nil {
		return fmt.Errorf("unable to encode %q: %w", key, err)
	}

	if o.values == nil {
		o.values = map[string]json.RawMessage{}
	}

	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.values[key] = raw
	return nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	o.keys = nil
	o.values = map[string]json.RawMessage{}

	if isNull(data) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected a JSON object but found %v", tok)
	}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected an object key but found %v", tok)
		}

		var raw json.RawMessage
		err = dec.Decode(&raw)
		if err != nil {
			return fmt.Errorf("unable to read value of %q: %w", key, err)
		}

		if _, dup := o.values[key]; !dup {
			o.keys = append(o.keys, key)
		}

		o.values[key] = bytes.TrimSpace(raw)
	}

	_, err = dec.Token()
	return err
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := marshal(key)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(o.values[key])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

//--------------------------------------------------------------------------------
// private

var nullLiteral = []byte("null")

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), nullLiteral)
}

// marshal encodes v without escaping HTML characters
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(v)
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
