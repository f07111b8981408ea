package repository

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// Present is displayed in place of a missing end date.
const Present = "Present"

var yearMonthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ParseYearMonth parses a strict "YYYY-MM" date.
func ParseYearMonth(value string) (t time.Time, err error) {
	if !yearMonthPattern.MatchString(value) {
		err = errors.Errorf("date %q is not in YYYY-MM format", value)
		return t, err
	}

	t, err = time.Parse("2006-01", value)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse date %q", value)
		return t, err
	}

	return t, err
}

// FormatDate converts "YYYY-MM" into "January 2006". Values that do not
// parse are returned unchanged.
func FormatDate(value string) (formatted string) {
	t, err := ParseYearMonth(value)
	if err != nil {
		formatted = value
		return formatted
	}
	formatted = t.Format("January 2006")
	return formatted
}

// DateRange formats a position's dates as "January 2021 - Present".
func (p *Position) DateRange() (dates string) {
	end := Present
	if !p.IsCurrent() {
		end = FormatDate(*p.EndDate)
	}
	dates = FormatDate(p.StartDate) + " - " + end
	return dates
}

// ActiveWithin reports whether the position was held at any point during the
// given number of years before now.
func (p *Position) ActiveWithin(years int, now time.Time) (recent bool) {
	if p.IsCurrent() {
		recent = true
		return recent
	}
	end, err := ParseYearMonth(*p.EndDate)
	if err != nil {
		return recent
	}
	recent = !end.Before(now.AddDate(-years, 0, 0))
	return recent
}
