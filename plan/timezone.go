package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // CI runners may lack a zoneinfo database
)

// labelOffsets are the short labels reading plans have historically used.
var labelOffsets = map[string]int{
	"EST": -5, "EDT": -4,
	"PST": -8, "PDT": -7,
	"GMT": 0, "UTC": 0,
	"SGT": 8,
}

var offsetLabel = regexp.MustCompile(`^(?i)(GMT|UTC)\s*([+-])\s*(\d{1,2})(?::?(\d{2}))?$`)

// ResolveLocation maps a timezone label to a location. Short labels
// ("SGT"), fixed offsets ("GMT+8", "UTC-03:30") and IANA names
// ("Asia/Singapore") are accepted; an empty label means UTC.
func ResolveLocation(label string) (*time.Location, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.UTC, nil
	}

	if hours, ok := labelOffsets[strings.ToUpper(label)]; ok {
		return time.FixedZone(strings.ToUpper(label), hours*3600), nil
	}

	if m := offsetLabel.FindStringSubmatch(label); m != nil {
		hours, _ := strconv.Atoi(m[3])
		minutes := 0
		if m[4] != "" {
			minutes, _ = strconv.Atoi(m[4])
		}
		if hours > 14 || minutes > 59 {
			return nil, fmt.Errorf("offset out of range in timezone %q", label)
		}
		seconds := hours*3600 + minutes*60
		if m[2] == "-" {
			seconds = -seconds
		}
		return time.FixedZone(strings.ToUpper(label), seconds), nil
	}

	loc, err := time.LoadLocation(label)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", label, err)
	}
	return loc, nil
}
