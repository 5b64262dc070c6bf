package domain

import "time"

// MonthWindow is a half-open [Start, End) range covering one calendar month.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// ParseMonthWindow parses a "YYYY-MM" month string into its UTC window.
func ParseMonthWindow(month string) (MonthWindow, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return MonthWindow{}, Errorf(KindValidation, "date must be in YYYY-MM format, got %q", month)
	}
	return MonthWindow{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

func (w MonthWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w MonthWindow) String() string {
	return w.Start.Format("2006-01")
}
