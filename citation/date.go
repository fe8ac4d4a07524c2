package citation

// Date is a publication date with optional month and day. A zero component
// means the source did not supply it; a Date with only Year set is the
// common case.
type Date struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"` // 1-12, 0 if unknown
	Day   int `json:"day,omitempty"`   // 1-31, 0 if unknown
}

// IsZero reports whether the date is entirely absent.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}
