package runner

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	// Default Limit is 4096
	limit := 4096

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := SanitizeInput(input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SanitizeInput() expected error for size %d, got nil", tt.inputSize)
				}
			} else {
				if err != nil {
					t.Errorf("SanitizeInput() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"}, // ESC removed
		{"Null Byte", "Null\x00Byte", "NullByte"},         // NULL removed
		{"Bell", "Ding\x07", "Ding"},                      // BEL removed
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv("STEPWISE_MAX_INPUT_SIZE", "10")

	// Input len 11 -> Should fail
	_, err := SanitizeInput("12345678901")
	if err == nil {
		t.Error("Expected error for input > 10 when env var is set")
	}

	// Input len 5 -> Should pass
	_, err = SanitizeInput("12345")
	if err != nil {
		t.Error("Unexpected error for valid input")
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	// Invalid UTF-8 sequence
	input := "\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98"
	_, err := SanitizeInput(input)
	if err != ErrInvalidUTF8 {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}

func TestSanitizeParams(t *testing.T) {
	in := map[string]any{
		"name":  "Ada\x1b",
		"age":   36,
		"tags":  []any{"a\x00", 2},
		"langs": []string{"go\x07"},
		"meta":  map[string]any{"note": "ok\x07"},
		"blank": nil,
	}
	out, err := SanitizeParams(in)
	require.NoError(t, err)

	assert.Equal(t, "Ada", out["name"])
	assert.Equal(t, 36, out["age"])
	assert.Equal(t, []any{"a", 2}, out["tags"])
	assert.Equal(t, []string{"go"}, out["langs"])
	assert.Equal(t, map[string]any{"note": "ok"}, out["meta"])
	assert.Nil(t, out["blank"])
	assert.Equal(t, "Ada\x1b", in["name"], "input must not be modified")

	out, err = SanitizeParams(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestSanitizeParams_RejectsOversizeValue(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "3")
	_, err := SanitizeParams(map[string]any{"name": "toolong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputTooLarge))
	assert.Contains(t, err.Error(), `attribute "name"`)
}
