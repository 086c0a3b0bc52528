package strategy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimTrailingContent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trailing prose",
			input: `{"a": 1} Hope this helps!`,
			want:  `{"a": 1}`,
		},
		{
			name:  "leading prose",
			input: `Here is the JSON you asked for: {"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "markdown fence remnants",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "two top-level values joined by comma are kept",
			input: `{"a":1}, {"b":2}`,
			want:  `{"a":1}, {"b":2}`,
		},
		{
			name:  "adjacent opener keeps scanning",
			input: `{"a":1} {"b":2}`,
			want:  `{"a":1} {"b":2}`,
		},
		{
			name:  "braces inside strings do not count",
			input: `{"text": "use { and } freely"} trailing`,
			want:  `{"text": "use { and } freely"}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"text": "say \"}\" loud"} extra`,
			want:  `{"text": "say \"}\" loud"}`,
		},
		{
			name:  "array payload",
			input: `[1, 2, 3] and some notes`,
			want:  `[1, 2, 3]`,
		},
		{
			name:  "unbalanced input unchanged",
			input: `{"a": 1`,
			want:  `{"a": 1`,
		},
		{
			name:  "truncated payload loses leading prose only",
			input: "Sure thing:\n```json\n{\"a\": 1,",
			want:  `{"a": 1,`,
		},
		{
			name:  "no structure at all",
			input: `plain text`,
			want:  `plain text`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TrimTrailingContent{}.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixTrailingCommas(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"object", `{"a": 1,}`, `{"a": 1}`},
		{"array", `[1, 2,]`, `[1, 2]`},
		{"nested with whitespace", "{\"a\": [1,\n],\n}", "{\"a\": [1\n]\n}"},
		{"double comma before brace", `{"a": 1,,}`, `{"a": 1}`},
		{"no change", `{"a": 1}`, `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FixTrailingCommas{}.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixSingleQuotes(t *testing.T) {
	got, err := FixSingleQuotes{}.Apply(`{'name': 'Alice'}`)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Alice"}`, got)
}

func TestAddMissingQuotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single key", `{name: "John"}`, `{"name": "John"}`},
		{"several keys", `{name: "John", age: 30}`, `{"name": "John", "age": 30}`},
		{"already quoted untouched", `{"name": "John"}`, `{"name": "John"}`},
		{"colon inside value untouched", `{"url": "http://x"}`, `{"url": "http://x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddMissingQuotes{}.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixMalformedNumbers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leading zeros", `{"n": 007}`, `{"n": 7}`},
		{"dangling decimal point", `{"n": 5.}`, `{"n": 5}`},
		{"extra decimal points", `{"n": 1.2.3}`, `{"n": 1.2}`},
		{"sound numbers untouched", `{"n": 10.25}`, `{"n": 10.25}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FixMalformedNumbers{}.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFixBooleanNull(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"python booleans", `{"a": True, "b": False}`, `{"a": true, "b": false}`},
		{"python none", `{"a": None}`, `{"a": null}`},
		{"javascript undefined", `{"a": undefined}`, `{"a": null}`},
		{"uppercase null", `{"a": NULL}`, `{"a": null}`},
		{"valid literals untouched", `{"a": true, "b": null}`, `{"a": true, "b": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FixBooleanNull{}.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddMissingBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated object", `{"a": 1`, `{"a": 1}`},
		{"nested structures", `{"a": {"b": [1, 2`, `{"a": {"b": [1, 2]}}`},
		{"unterminated string closed first", `{"a": "text`, `{"a": "text"}`},
		{"balanced untouched", `{"a": 1}`, `{"a": 1}`},
		{"stray closer ignored", `{"a": 1}]`, `{"a": 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddMissingBraces{}.Apply(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONStrategies_PriorityOrder(t *testing.T) {
	strategies := JSONStrategies()
	require.Len(t, strategies, 7)

	chain := NewChain(nil, strategies...)
	ordered := chain.Strategies()
	for i := 1; i < len(ordered); i++ {
		assert.GreaterOrEqual(t, ordered[i-1].Priority(), ordered[i].Priority(),
			"%s must not run after %s", ordered[i-1].Name(), ordered[i].Name())
	}
	assert.Equal(t, "trim_trailing_content", ordered[0].Name())
}

func TestJSONChain_EndToEnd(t *testing.T) {
	valid := func(s string) bool { return json.Valid([]byte(s)) }
	chain := NewChain(valid, JSONStrategies()...)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trailing comma", `{"a": 1, "b": 2,}`, `{"a": 1, "b": 2}`},
		{"single quotes", `{'a': 1}`, `{"a": 1}`},
		{"unquoted keys", `{a: 1, b: 2}`, `{"a": 1, "b": 2}`},
		{"python literals", `{"ok": True, "missing": None}`, `{"ok": true, "missing": null}`},
		{"prose wrapped", `Sure! {"a": 1} Let me know.`, `{"a": 1}`},
		{"unterminated", `{"a": [1, 2`, `{"a": [1, 2]}`},
		{"already valid untouched", `{"a": 1}`, `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chain.Apply(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, valid(got), "chain output must be valid JSON: %s", got)
		})
	}
}
