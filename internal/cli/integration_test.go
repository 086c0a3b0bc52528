package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	// Create a temporary directory for test files
	tempDir, err := os.MkdirTemp("", "remedy-test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Malformed JSON: unquoted keys, single quotes, trailing commas
	content := `{
		name: "John Doe",
		'age': 30,
		"email": "john.doe@example.com",
		"address": {
			"street": "123 Main St",
			"city": "Anytown",
			"zip": "12345",
		},
		"active": true,
	}`
	inputFile := filepath.Join(tempDir, "test.json")
	err = os.WriteFile(inputFile, []byte(content), 0644)
	require.NoError(t, err)

	// Define output file path
	outputFile := filepath.Join(tempDir, "output.json")

	// Run the CLI command
	cmd := exec.Command("go", "run", "../../main.go", "-i", inputFile, "-o", outputFile, "-f", "json")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	// Read the repaired output file
	repaired, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	require.True(t, json.Valid(repaired), "output is not valid JSON: %s", string(repaired))

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(repaired, &parsed))
	assert.Equal(t, "John Doe", parsed["name"])
	assert.Equal(t, float64(30), parsed["age"])
	assert.Equal(t, true, parsed["active"])

	address, ok := parsed["address"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Anytown", address["city"])
}

// TestCLI_StdinStdout tests the CLI with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	content := `{"name": "Jane Smith", "age": 25, "active": True,}`

	// Run the CLI command with stdin input
	cmd := exec.Command("go", "run", "../../main.go", "-f", "json")
	cmd.Stdin = strings.NewReader(content)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	// Verify the output
	assert.JSONEq(t, `{"name": "Jane Smith", "age": 25, "active": true}`, strings.TrimSpace(stdout.String()))
}

// TestCLI_CustomRules tests the CLI with a custom rules file
func TestCLI_CustomRules(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "remedy-rules")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	rulesFile := filepath.Join(tempDir, "rules.yaml")
	rulesYAML := `rules:
  - name: StripEllipsis
    pattern: "\\.\\.\\."
    replacement: ""
    priority: 95
`
	err = os.WriteFile(rulesFile, []byte(rulesYAML), 0644)
	require.NoError(t, err)

	cmd := exec.Command("go", "run", "../../main.go", "-f", "json", "--rules", rulesFile)
	cmd.Stdin = strings.NewReader(`{"note": "truncated...",}`)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err = cmd.Run()
	require.NoError(t, err)

	assert.JSONEq(t, `{"note": "truncated"}`, strings.TrimSpace(stdout.String()))
}

// TestCLI_DebugLogging tests that --debug writes repair steps to stderr
func TestCLI_DebugLogging(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "-f", "json", "-d")
	cmd.Stdin = strings.NewReader(`{name: John}`)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err)

	assert.JSONEq(t, `{"name": "John"}`, strings.TrimSpace(stdout.String()))
	assert.Contains(t, stderr.String(), "level=DEBUG")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "-v")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "remedy version")
}

// TestCLI_FatalInput tests the CLI with input no strategy can recover
func TestCLI_FatalInput(t *testing.T) {
	content := `{"name": @@@}`

	// Run the CLI command
	cmd := exec.Command("go", "run", "../../main.go", "-f", "json")
	cmd.Stdin = strings.NewReader(content)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail on unrecoverable input")
	assert.NotEmpty(t, stderr.String())
}

// TestCLI_EmptyInput tests the CLI with empty input
func TestCLI_EmptyInput(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "-f", "json")
	cmd.Stdin = strings.NewReader("")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail on empty input")
	assert.Contains(t, stderr.String(), "empty")
}
