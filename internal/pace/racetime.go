package pace

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// m:ss.fff, mm:ss, ss.fff
	clockPattern = regexp.MustCompile(`^(?:([0-5]?[0-9]):)?([0-5]?[0-9])(?:\.([0-9]{0,3}))?$`)
	// sss.fff
	secondsPattern = regexp.MustCompile(`^[0-9]{0,3}(?:\.[0-9]{0,3})?$`)
)

// ParseRaceTime converts a typed race time into seconds.
func ParseRaceTime(s string) (float64, error) {
	s = strings.TrimSpace(s)

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		secs, err := strconv.ParseFloat(strings.TrimSuffix(tail(m), "."), 64)
		if err != nil {
			return 0, fmt.Errorf("parse race time %q: %w", s, err)
		}
		if m[1] != "" {
			mins, _ := strconv.Atoi(m[1])
			secs += float64(mins * 60)
		}
		return secs, nil
	}

	if s != "" && s != "." && secondsPattern.MatchString(s) {
		secs, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
		if err != nil {
			return 0, fmt.Errorf("parse race time %q: %w", s, err)
		}
		return secs, nil
	}

	return 0, fmt.Errorf("parse race time %q: expected mm:ss.fff or sss.fff", s)
}

// tail is the seconds part (with any fraction) of a clockPattern match.
func tail(m []string) string {
	full := m[0]
	if i := strings.LastIndexByte(full, ':'); i >= 0 {
		return full[i+1:]
	}
	return full
}

// FormatRaceTime renders seconds as mm:ss.sss, or hh:mm:ss.sss from one hour up.
func FormatRaceTime(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := (int(seconds) - hours*3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%06.3f", minutes, secs)
}
