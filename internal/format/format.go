package format

import (
	"fmt"
	"strings"
	"time"
)

// Month formats a "YYYY-MM" participation date as "Jan 2024".
// "Present" and empty values render as "Present"; unparseable values are returned as-is.
// Example: Month("2024-01") => "Jan 2024"
func Month(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "present") {
		return "Present"
	}
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return v
	}
	return t.Format("Jan 2006")
}

// Period joins a start and end month: "Jan 2024 - Present".
func Period(start, end string) string {
	if strings.TrimSpace(start) == "" {
		return Month(end)
	}
	return Month(start) + " - " + Month(end)
}

// Plural formats a count with its noun: Plural(1, "project") => "1 project",
// Plural(2, "project") => "2 projects".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// FmtDate formats time in a short English form.
func FmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
