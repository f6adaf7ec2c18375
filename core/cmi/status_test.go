package cmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		text string
		want Status
	}{
		{"Completed", StatusCompleted},
		{"PASSED ", StatusPassed},
		{"failed", StatusFailed},
		{"Incomplete", StatusIncomplete},
		{"browsed", StatusBrowsed},
		{"not attempted", StatusNotAttempted},
		{"Not-Attempted", StatusNotAttempted},
		{"not_attempted", StatusNotAttempted},
		{"ｐａｓｓｅｄ", StatusPassed}, // full width
		{"", StatusNotAttempted},
		{"frobnicate", StatusNotAttempted},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.text))
		})
	}
}

func TestIsVocabulary(t *testing.T) {
	assert.True(t, IsVocabulary("passed"))
	assert.True(t, IsVocabulary("not attempted"))
	assert.False(t, IsVocabulary("frobnicate"))
	assert.False(t, IsVocabulary(""))
}

func TestStatus_Done(t *testing.T) {
	for _, st := range Statuses {
		assert.Equal(t, st == StatusPassed || st == StatusCompleted, st.Done(), string(st))
	}
}

func TestStatus_Vocabulary(t *testing.T) {
	assert.Equal(t, "not attempted", StatusNotAttempted.Vocabulary())
	assert.Equal(t, "passed", StatusPassed.Vocabulary())
	assert.Equal(t, "not attempted", Status("").Vocabulary())
}
