package rostering

import "time"

func parseDate(iso string) (time.Time, error) {
	return time.Parse("2006-01-02", iso)
}
