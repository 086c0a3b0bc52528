package models

import (
	"encoding/json"

	"github.com/mcncl/remedy/internal/errors"
)

// Value is a generic type to represent any recovered JSON value.
// This can be a string, int64, float64, bool, nil, Object, or Array.
type Value interface{}

// Object represents a JSON object, which is a map of strings to Values.
// Duplicate keys collapse naturally: the last assignment wins.
type Object map[string]Value

// Array represents a JSON array, which is a slice of Values.
type Array []Value

// Serialize renders a recovered value tree back to compact JSON text.
// Object keys come out in deterministic (sorted) order; key insertion
// order is not meaningful after recovery.
func Serialize(v Value) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		// Non-finite floats are the usual culprit; encoding/json refuses them.
		return "", errors.NewSerializeError("failed to re-serialize recovered value", err)
	}
	return string(data), nil
}
