package gamedomain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	wallClockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{1,2})(?:\.(\d{1,3}))?$`)
	minutesPattern   = regexp.MustCompile(`^(\d{1,2}):(\d{1,2})(?:\.(\d{1,3}))?$`)
	secondsPattern   = regexp.MustCompile(`^(\d{1,2})(?:\.(\d{1,3}))?$`)
)

const formatHint = "use ss[.SSS], mm:ss[.SSS] or a clock time hh:mm:ss[.SSS], e.g. 13.5, 00:28.250, 13:37:28.250"

// ParseEarlyBirdOffset turns participant input into an offset in milliseconds
// after instanceStart.
//
// Three colon-separated parts are a wall-clock time on the instance's date in
// loc. Two parts are minutes and seconds after the start, one part is seconds
// after the start. Fractions carry up to three digits. The result is not
// range checked.
func ParseEarlyBirdOffset(input string, instanceStart time.Time, loc *time.Location) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, Rejected(ReasonInvalidFormat, "time must not be empty")
	}
	if strings.Contains(s, ",") {
		return 0, Rejected(ReasonInvalidFormat, "use a dot (.) as decimal separator, not a comma")
	}

	if m := wallClockPattern.FindStringSubmatch(s); m != nil {
		hour, minute, second := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if hour > 23 || minute > 59 || second > 59 {
			return 0, Rejected(ReasonInvalidFormat, "invalid clock time %q", s)
		}
		if loc == nil {
			loc = instanceStart.Location()
		}
		day := instanceStart.In(loc)
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, int(fraction(m[4]))*int(time.Millisecond), loc)
		return at.Sub(instanceStart).Milliseconds(), nil
	}

	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		minutes, seconds := atoi(m[1]), atoi(m[2])
		if seconds > 59 {
			return 0, Rejected(ReasonInvalidFormat, "seconds must be below 60 in %q", s)
		}
		return int64(minutes*60+seconds)*1000 + fraction(m[3]), nil
	}

	if m := secondsPattern.FindStringSubmatch(s); m != nil {
		return int64(atoi(m[1]))*1000 + fraction(m[2]), nil
	}

	return 0, Rejected(ReasonInvalidFormat, "invalid time format %q: %s", s, formatHint)
}

// FormatOffset renders an offset the way participants type it back.
func FormatOffset(ms int64) string {
	if ms < 0 {
		return "0.000s"
	}
	if ms >= 60000 {
		return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
	}
	return fmt.Sprintf("%d.%03ds", ms/1000, ms%1000)
}

// fraction right-pads a 1-3 digit fraction to milliseconds.
func fraction(digits string) int64 {
	if digits == "" {
		return 0
	}
	for len(digits) < 3 {
		digits += "0"
	}
	return int64(atoi(digits))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
