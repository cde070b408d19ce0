package jsonschema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OMap is a JSON object decoded with its key order preserved. Go's
// map[string]interface{} loses declaration order, but patternProperties
// (first-match-wins) and completion ordering both depend on it, so schema
// documents are decoded through this type instead of a plain map.
type OMap struct {
	keys   []string
	values map[string]interface{}
}

func newOMap() *OMap {
	return &OMap{values: map[string]interface{}{}}
}

func (o *OMap) set(key string, v interface{}) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *OMap) Get(key string) (interface{}, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

func (o *OMap) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// DecodeOrdered decodes a JSON document (using encoding/json's token API)
// into nested OMap/[]interface{}/scalar values, preserving object key order
// throughout.
func DecodeOrdered(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (interface{}, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := newOMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("jsonschema: expected string object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []interface{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("jsonschema: unexpected delimiter %v", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return tok, nil
	}
}
