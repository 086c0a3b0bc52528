package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/remedy/internal/errors"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"object with sorted keys", Object{"b": int64(2), "a": int64(1)}, `{"a":1,"b":2}`},
		{"nested", Object{"a": Array{int64(1), "x", true, nil}}, `{"a":[1,"x",true,null]}`},
		{"float", Object{"pi": 3.5}, `{"pi":3.5}`},
		{"bare string", "hello", `"hello"`},
		{"empty object", Object{}, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSerialize_NonFiniteFloat(t *testing.T) {
	_, err := Serialize(Object{"bad": math.Inf(1)})
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeSerialize, appErr.Type)
}
