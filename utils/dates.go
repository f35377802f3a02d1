package utils

import "time"

const dateLayout = "2006-01-02"

// FormatDate renders a timestamp as YYYY-MM-DD, or nil for unset values, so
// nullable dates serialize as JSON null.
func FormatDate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func FormatDateValue(t time.Time) string {
	return t.Format(dateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
