package evaluation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		prompt      string
		wantCode    Code
		wantMessage string
	}{
		{
			name:        "empty prompt",
			prompt:      "",
			wantCode:    CodeInvalidPrompt,
			wantMessage: "Prompt is empty. Please enter a prompt for evaluation.",
		},
		{
			name:        "too short regardless of content",
			prompt:      "Explain this step",
			wantCode:    CodeInvalidPrompt,
			wantMessage: "Prompt is too short. Please enter at least 40 characters.",
		},
		{
			name:        "long enough but too few words",
			prompt:      "Supercalifragilisticexpialidocious antidisestablishmentarianism explain",
			wantCode:    CodeInvalidPrompt,
			wantMessage: "Prompt must contain at least 6 words.",
		},
		{
			name:     "no instruction phrase",
			prompt:   "The quick brown fox jumped over the lazy dog near the riverbank today",
			wantCode: CodeInvalidPrompt,
		},
		{
			name:        "multibyte prompt measured in characters not bytes",
			prompt:      "Résumé the café menü step by step déjà", // 38 runes, 44 bytes
			wantCode:    CodeInvalidPrompt,
			wantMessage: "Prompt is too short. Please enter at least 40 characters.",
		},
		{
			name:   "multibyte prompt of 40 characters passes",
			prompt: "Résumé the café menü step by step déjà vu", // 41 runes
		},
		{
			name:   "valid prompt passes",
			prompt: "Explain the water cycle in simple terms, step by step, and return a short summary.",
		},
		{
			name:   "instruction phrase matching is case-insensitive",
			prompt: "YOU ARE a highly experienced geography teacher with many years of classroom practice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errResult := Validate(tt.prompt)
			if tt.wantCode == "" {
				assert.Nil(t, errResult)
				return
			}
			require.NotNil(t, errResult)
			assert.Equal(t, tt.wantCode, errResult.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, errResult.Message)
			}
		})
	}
}

func TestValidateRuleOrder(t *testing.T) {
	// A prompt failing several rules reports the first one: length before
	// word count before instruction phrase.
	errResult := Validate("short words only")
	require.NotNil(t, errResult)
	assert.Contains(t, errResult.Message, "too short")
}

func TestCheckDuplicate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fingerprint := "abc123def4"

	t.Run("same hash within the hour is rejected", func(t *testing.T) {
		lastTS := now.Add(-30 * time.Minute).Format(time.RFC3339)
		errResult := CheckDuplicate(fingerprint, fingerprint, lastTS, now)
		require.NotNil(t, errResult)
		assert.Equal(t, CodeDuplicatePrompt, errResult.Code)
	})

	t.Run("same hash after the hour is allowed", func(t *testing.T) {
		lastTS := now.Add(-61 * time.Minute).Format(time.RFC3339)
		assert.Nil(t, CheckDuplicate(fingerprint, fingerprint, lastTS, now))
	})

	t.Run("different hash is allowed", func(t *testing.T) {
		lastTS := now.Add(-5 * time.Minute).Format(time.RFC3339)
		assert.Nil(t, CheckDuplicate(fingerprint, "0000000000", lastTS, now))
	})

	t.Run("missing fields disable the guard", func(t *testing.T) {
		assert.Nil(t, CheckDuplicate(fingerprint, "", "", now))
		assert.Nil(t, CheckDuplicate(fingerprint, fingerprint, "", now))
	})

	t.Run("unparseable timestamp disables the guard", func(t *testing.T) {
		assert.Nil(t, CheckDuplicate(fingerprint, fingerprint, "yesterday", now))
	})
}

func TestFingerprint(t *testing.T) {
	first := Fingerprint("Explain the water cycle step by step.")
	second := Fingerprint("Explain the water cycle step by step.")
	other := Fingerprint("Explain the rock cycle step by step.")

	assert.Equal(t, first, second, "fingerprint must be deterministic")
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 10)
	assert.Equal(t, strings.ToLower(first), first, "fingerprint is lowercase hex")
}
