package pubmed

import (
	"strconv"
	"strings"

	"github.com/matsen/refdup/citation"
	"github.com/matsen/refdup/internal/bibtext"
)

// months covers the abbreviated and full English month names MEDLINE date
// fields use, matched case-insensitively.
var months = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// parseDate reads MEDLINE publication dates such as "2020 Jun 9",
// "2023 May 30", or "2023". Season names ("2020 Spring") and month ranges
// ("2021 Jan-Feb") degrade to a year-only date; a day range keeps its
// first day.
func parseDate(s string) citation.Date {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return citation.Date{}
	}
	year := bibtext.ParseYear(fields[0])
	if year == 0 {
		return citation.Date{}
	}
	d := citation.Date{Year: year}
	if len(fields) < 2 {
		return d
	}
	m, ok := months[strings.ToLower(fields[1])]
	if !ok {
		return d
	}
	d.Month = m
	if len(fields) < 3 {
		return d
	}
	digits := fields[2]
	n := 0
	for n < len(digits) && digits[n] >= '0' && digits[n] <= '9' {
		n++
	}
	if day, err := strconv.Atoi(digits[:n]); err == nil && day >= 1 && day <= 31 {
		d.Day = day
	}
	return d
}
