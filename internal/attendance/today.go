package attendance

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// LoadZone resolves an IANA zone name from the embedded database, so the
// result does not depend on the host's zoneinfo files.
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Today is the calendar date of now in loc, formatted YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}
