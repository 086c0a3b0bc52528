package main

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/remedy/internal/repair"
)

func TestRun_RepairsBrokenJSON(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	// Test data: trailing comma and single-quoted string
	input := `{"name": 'John', "age": 30,}`

	// Create temp input file
	tmpInput, err := os.CreateTemp("", "test_input_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString(input)
	require.NoError(t, err)
	_ = tmpInput.Close()

	// Create temp output file
	tmpOutput, err := os.CreateTemp("", "test_output_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpOutput.Name()) }()
	_ = tmpOutput.Close()

	// Set CLI options
	CLI.Input = tmpInput.Name()
	CLI.Output = tmpOutput.Name()
	CLI.Format = "json"

	err = run(&Context{})
	require.NoError(t, err)

	// Verify output file contains valid JSON with the expected fields
	outputContent, err := os.ReadFile(tmpOutput.Name())
	require.NoError(t, err)
	assert.True(t, json.Valid(outputContent))
	assert.JSONEq(t, `{"name": "John", "age": 30}`, string(outputContent))
}

func TestRun_AutoDetectsFormat(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpInput, err := os.CreateTemp("", "test_input_*.txt")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString(`{name: John, active: True}`)
	require.NoError(t, err)
	_ = tmpInput.Close()

	tmpOutput, err := os.CreateTemp("", "test_output_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpOutput.Name()) }()
	_ = tmpOutput.Close()

	CLI.Input = tmpInput.Name()
	CLI.Output = tmpOutput.Name()
	CLI.Format = "auto"

	err = run(&Context{})
	require.NoError(t, err)

	outputContent, err := os.ReadFile(tmpOutput.Name())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "John", "active": true}`, string(outputContent))
}

func TestRun_ValidateMode(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpInput, err := os.CreateTemp("", "test_validate_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString(`{"valid": true}`)
	require.NoError(t, err)
	_ = tmpInput.Close()

	CLI.Input = tmpInput.Name()
	CLI.Format = "json"
	CLI.Validate = true

	err = run(&Context{})
	assert.NoError(t, err)
}

func TestRun_ValidateMode_ReportsProblems(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpInput, err := os.CreateTemp("", "test_validate_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString(`{"broken": }`)
	require.NoError(t, err)
	_ = tmpInput.Close()

	CLI.Input = tmpInput.Name()
	CLI.Format = "json"
	CLI.Validate = true

	err = run(&Context{})
	assert.Error(t, err)
}

func TestRun_ConfidenceMode(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpInput, err := os.CreateTemp("", "test_confidence_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString(`{"score": 1}`)
	require.NoError(t, err)
	_ = tmpInput.Close()

	CLI.Input = tmpInput.Name()
	CLI.Format = "json"
	CLI.Confidence = true

	err = run(&Context{})
	assert.NoError(t, err)
}

func TestRun_WithCustomRules(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	rulesYAML := `rules:
  - name: FixSmartQuotes
    pattern: "[“”]"
    replacement: "\""
    priority: 95
`
	tmpRules, err := os.CreateTemp("", "test_rules_*.yaml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpRules.Name()) }()

	_, err = tmpRules.WriteString(rulesYAML)
	require.NoError(t, err)
	_ = tmpRules.Close()

	tmpInput, err := os.CreateTemp("", "test_input_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString("{“name”: “John”}")
	require.NoError(t, err)
	_ = tmpInput.Close()

	tmpOutput, err := os.CreateTemp("", "test_output_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpOutput.Name()) }()
	_ = tmpOutput.Close()

	CLI.Input = tmpInput.Name()
	CLI.Output = tmpOutput.Name()
	CLI.Format = "json"
	CLI.Rules = tmpRules.Name()

	err = run(&Context{})
	require.NoError(t, err)

	outputContent, err := os.ReadFile(tmpOutput.Name())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "John"}`, string(outputContent))
}

func TestRun_RulesRejectedForNonJSON(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpInput, err := os.CreateTemp("", "test_input_*.yaml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString("name: John\n")
	require.NoError(t, err)
	_ = tmpInput.Close()

	CLI.Input = tmpInput.Name()
	CLI.Format = "yaml"
	CLI.Rules = "/some/rules.yaml"

	err = run(&Context{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JSON only")
}

func TestRun_UnknownFormat(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpInput, err := os.CreateTemp("", "test_input_*.txt")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpInput.Name()) }()

	_, err = tmpInput.WriteString("hello")
	require.NoError(t, err)
	_ = tmpInput.Close()

	CLI.Input = tmpInput.Name()
	CLI.Format = "protobuf"

	err = run(&Context{})
	assert.Error(t, err)
}

func TestReadInput_FromFile(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpFile, err := os.CreateTemp("", "test_read_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString(`{"a": 1}`)
	require.NoError(t, err)
	_ = tmpFile.Close()

	CLI.Input = tmpFile.Name()

	content, err := readInput()
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, content)
}

func TestReadInput_FromStdin(t *testing.T) {
	// Save original CLI state and stdin
	originalCLI := CLI
	originalStdin := os.Stdin
	defer func() {
		CLI = originalCLI
		os.Stdin = originalStdin
	}()

	// Clear input file to force stdin reading
	CLI.Input = ""

	// Create a pipe to simulate stdin
	input := `{"from": "stdin",}`
	r, w, err := os.Pipe()
	require.NoError(t, err)

	// Write test data to pipe
	go func() {
		defer func() { _ = w.Close() }()
		_, _ = w.WriteString(input)
	}()

	// Replace stdin
	os.Stdin = r
	defer func() { _ = r.Close() }()

	content, err := readInput()
	require.NoError(t, err)
	assert.Equal(t, input, content)
}

func TestReadInput_EmptyFile(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpFile, err := os.CreateTemp("", "test_empty_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()
	_ = tmpFile.Close()

	CLI.Input = tmpFile.Name()

	_, err = readInput()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadInput_NonExistentFile(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	CLI.Input = "/non/existent/file.json"

	_, err := readInput()
	assert.Error(t, err)
}

func TestWriteOutput_ToFile(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tmpFile, err := os.CreateTemp("", "test_write_*.json")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()
	_ = tmpFile.Close()

	CLI.Output = tmpFile.Name()

	repaired := `{"name":"John"}`
	err = writeOutput(repaired)
	require.NoError(t, err)

	content, err := os.ReadFile(tmpFile.Name())
	require.NoError(t, err)
	assert.Equal(t, repaired, string(content))
}

func TestWriteOutput_ToStdout(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	// Clear output file to force stdout
	CLI.Output = ""

	err := writeOutput(`{"ok":true}`)
	assert.NoError(t, err)
}

func TestWriteOutput_FileError(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	// Try to write to a directory that doesn't exist
	CLI.Output = "/non/existent/dir/output.json"

	err := writeOutput(`{}`)
	assert.Error(t, err)
}

func TestResolveFormat(t *testing.T) {
	// Save original CLI state
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	tests := []struct {
		name    string
		flag    string
		content string
		want    repair.Format
		wantErr bool
	}{
		{"explicit json", "json", "anything", repair.FormatJSON, false},
		{"explicit yml alias", "yml", "anything", repair.FormatYAML, false},
		{"auto detects json", "auto", `{"a": 1}`, repair.FormatJSON, false},
		{"auto detects xml", "auto", `<root><a/></root>`, repair.FormatXML, false},
		{"unknown format", "parquet", "anything", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			CLI.Format = tt.flag
			got, err := resolveFormat(tt.content)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Note: TestReadInteractiveInput is challenging to test reliably due to
// stdin/EOF handling complexities, so we focus on testing other components
func TestReadInteractiveInput_Concept(t *testing.T) {
	assert.NotNil(t, readInteractiveInput)
}
