package cmi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var timespanRegex = regexp.MustCompile(`^\d{1,4}:\d{1,2}:\d{1,2}(\.\d{1,2})?$`)

// maxComponent caps each decoded component so the sum stays well inside int64.
const maxComponent = 1 << 31

// EncodeTime formats seconds as a CMITimespan "HHHH:MM:SS".
// Hours are zero-padded to at least 4 digits and grow beyond that as needed.
func EncodeTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%04d:%02d:%02d", hours, minutes, secs)
}

// DecodeTime parses a colon delimited H:M:S(.fraction) timespan into whole seconds.
// Missing or malformed components count as 0 and text without a colon decodes to 0.
// Oversized components saturate at maxComponent, so the result is never negative.
func DecodeTime(text string) int64 {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, ":") {
		return 0
	}
	parts := strings.Split(text, ":")

	component := func(i int) int64 {
		if i >= len(parts) {
			return 0
		}
		p := strings.TrimSpace(parts[i])
		if dot := strings.IndexByte(p, '.'); dot >= 0 {
			p = p[:dot] // fractional seconds are truncated
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange && n > 0 {
				return maxComponent
			}
			return 0
		}
		if n < 0 {
			return 0
		}
		if n > maxComponent {
			return maxComponent
		}
		return n
	}
	return component(0)*3600 + component(1)*60 + component(2)
}

// IsTimespan reports whether text is a well formed CMITimespan: 1 to 4 hour digits.
func IsTimespan(text string) bool {
	return timespanRegex.MatchString(text)
}
