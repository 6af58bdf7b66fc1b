package util

import (
	"strconv"
	"strings"
	"time"
)

// StampLayout renders "March 10, 2025 | 14:30".
const StampLayout = "January 02, 2006 | 15:04"

// DisplayLocation resolves the zone used for "Last updated" stamps. IANA
// names (containing a slash) are loaded; anything else is a fixed offset
// labelled with zone.
func DisplayLocation(zone string, offset time.Duration) *time.Location {
	if strings.Contains(zone, "/") {
		if loc, err := time.LoadLocation(zone); err == nil {
			return loc
		}
	}
	if zone == "" {
		zone = "UTC"
	}
	return time.FixedZone(zone, int(offset.Seconds()))
}

// FormatStamp formats t in loc followed by the zone abbreviation.
func FormatStamp(t time.Time, loc *time.Location) string {
	t = t.In(loc)
	name, _ := t.Zone()
	return t.Format(StampLayout) + " " + name
}

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
