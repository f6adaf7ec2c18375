package cmi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChildren(t *testing.T) {
	v, has, ok := Children("cmi.core.score._children")
	assert.True(t, ok)
	assert.True(t, has)
	assert.Equal(t, "raw,min,max", v)

	_, has, ok = Children("cmi.core.lesson_status._children")
	assert.True(t, ok)
	assert.False(t, has)

	_, _, ok = Children(LessonStatus)
	assert.False(t, ok)
}

func TestParseInteraction(t *testing.T) {
	tests := []struct {
		element string
		index   int
		field   string
		ok      bool
	}{
		{"cmi.interactions.0.id", 0, "id", true},
		{"cmi.interactions.3.result", 3, "result", true},
		{"cmi.interactions.1.correct_responses.0.pattern", 1, "correct_responses.0.pattern", true},
		{"cmi.interactions.x.id", 0, "", false},
		{"cmi.interactions.0.bogus", 0, "", false},
		{"cmi.interactions._count", 0, "", false},
		{LessonStatus, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.element, func(t *testing.T) {
			index, field, ok := ParseInteraction(tt.element)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.index, index)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestIsHighValue(t *testing.T) {
	assert.True(t, IsHighValue(LessonStatus))
	assert.True(t, IsHighValue(ScoreRaw))
	assert.True(t, IsHighValue(Exit))
	assert.False(t, IsHighValue(LessonLocation))
	assert.False(t, IsHighValue(SuspendData))
}
