package cmi

import (
	"strconv"
	"strings"
)

// SCORM 1.2 data model elements understood by the runtime.
const (
	StudentID      = "cmi.core.student_id"
	StudentName    = "cmi.core.student_name"
	LessonStatus   = "cmi.core.lesson_status"
	LessonLocation = "cmi.core.lesson_location"
	ScoreRaw       = "cmi.core.score.raw"
	ScoreMin       = "cmi.core.score.min"
	ScoreMax       = "cmi.core.score.max"
	TotalTime      = "cmi.core.total_time"
	SessionTime    = "cmi.core.session_time"
	Entry          = "cmi.core.entry"
	Credit         = "cmi.core.credit"
	LessonMode     = "cmi.core.lesson_mode"
	Exit           = "cmi.core.exit"
	SuspendData    = "cmi.suspend_data"

	InteractionsCount = "cmi.interactions._count"

	EntryAbInitio = "ab-initio"
	EntryResume   = "resume"
)

// Access describes how content may touch an element.
type Access int

const (
	ReadWrite Access = iota
	ReadOnly
	WriteOnly
)

var (
	elements = map[string]Access{
		StudentID:      ReadOnly,
		StudentName:    ReadOnly,
		LessonStatus:   ReadWrite,
		LessonLocation: ReadWrite,
		ScoreRaw:       ReadWrite,
		ScoreMin:       ReadWrite,
		ScoreMax:       ReadWrite,
		TotalTime:      ReadOnly,
		SessionTime:    WriteOnly,
		Entry:          ReadOnly,
		Credit:         ReadOnly,
		LessonMode:     ReadOnly,
		Exit:           WriteOnly,
		SuspendData:    ReadWrite,
	}

	// children lists the `_children` keyword value per parent element.
	children = map[string]string{
		"cmi.core":         "student_id,student_name,lesson_location,credit,lesson_status,entry,score,total_time,lesson_mode,exit,session_time",
		"cmi.core.score":   "raw,min,max",
		"cmi.interactions": "id,time,type,correct_responses,weighting,student_response,result,latency",
	}

	// highValue elements are pushed to the backend as soon as they are set.
	highValue = map[string]bool{
		LessonStatus: true,
		ScoreRaw:     true,
		Exit:         true,
	}

	interactionFields = map[string]bool{
		"id":               true,
		"time":             true,
		"type":             true,
		"weighting":        true,
		"student_response": true,
		"result":           true,
		"latency":          true,
	}
)

// Lookup returns the access mode of a core element.
func Lookup(element string) (Access, bool) {
	a, ok := elements[element]
	return a, ok
}

// Children returns the `_children` value for element, if it has children.
// ok is false when element is not a `_children` keyword at all.
func Children(element string) (value string, hasChildren, ok bool) {
	parent := strings.TrimSuffix(element, "._children")
	if parent == element {
		return "", false, false
	}
	value, hasChildren = children[parent]
	return value, hasChildren, true
}

// IsHighValue reports whether element must be pushed without waiting for a flush.
func IsHighValue(element string) bool {
	return highValue[element]
}

// IsNumeric reports whether element carries a CMIDecimal.
func IsNumeric(element string) bool {
	return element == ScoreRaw || element == ScoreMin || element == ScoreMax
}

// ParseInteraction splits "cmi.interactions.n.field" into its index and field.
// Nested correct response patterns come back as "correct_responses.m.pattern".
func ParseInteraction(element string) (index int, field string, ok bool) {
	rest := strings.TrimPrefix(element, "cmi.interactions.")
	if rest == element {
		return 0, "", false
	}
	parts := strings.SplitN(rest, ".", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil || index < 0 {
		return 0, "", false
	}
	field = parts[1]
	if interactionFields[field] {
		return index, field, true
	}
	sub := strings.Split(field, ".")
	if len(sub) == 3 && sub[0] == "correct_responses" && sub[2] == "pattern" {
		if m, err := strconv.Atoi(sub[1]); err == nil && m >= 0 {
			return index, field, true
		}
	}
	return 0, "", false
}
