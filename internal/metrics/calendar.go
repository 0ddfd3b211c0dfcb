package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MonthNames is the canonical month table used for every monthly bucket.
var MonthNames = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// monthAliases maps folded spellings to months that are not in MonthNames.
var monthAliases = map[string]time.Month{
	"setiembre": time.September,
}

var monthLookup = func() map[string]time.Month {
	lookup := make(map[string]time.Month, len(MonthNames)+len(monthAliases))
	for i, name := range MonthNames {
		lookup[foldMonthName(name)] = time.Month(i + 1)
	}
	for alias, month := range monthAliases {
		lookup[alias] = month
	}
	return lookup
}()

// foldMonthName lower-cases and strips diacritics so "MARZO" and "márzo"
// resolve to the same key. Casers are stateful, so one is built per call.
func foldMonthName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return cases.Lower(language.Spanish).String(folded)
}

// ShiftedDate moves t one day forward in UTC. Dates are stored at UTC
// midnight while the organisation calendar runs one day ahead.
func ShiftedDate(t time.Time) time.Time {
	return t.UTC().AddDate(0, 0, 1)
}

// MonthOf returns the calendar month of t after the one-day shift.
func MonthOf(t time.Time) time.Month {
	return ShiftedDate(t).Month()
}

// MonthIndex returns the zero-based month bucket of t.
func MonthIndex(t time.Time) int {
	return int(MonthOf(t)) - 1
}

// YearOf returns the calendar year of t after the one-day shift.
func YearOf(t time.Time) int {
	return ShiftedDate(t).Year()
}

// MonthName returns the canonical name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return MonthNames[m-1]
}

// MonthNameOf buckets t and returns its canonical month name.
func MonthNameOf(t time.Time) string {
	return MonthName(MonthOf(t))
}

// ParseMonth resolves a month name ignoring case and accents.
func ParseMonth(name string) (time.Month, error) {
	if month, ok := monthLookup[foldMonthName(name)]; ok {
		return month, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonthName, name)
}

// monthPosition returns the canonical index of a month name, or 12 for
// unknown names so they sort last.
func monthPosition(name string) int {
	if month, ok := monthLookup[foldMonthName(name)]; ok {
		return int(month) - 1
	}
	return len(MonthNames)
}

// SortByMonth orders items chronologically by the month name returned
// from monthOf. Items sharing a month keep their relative order.
func SortByMonth[T any](items []T, monthOf func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return monthPosition(monthOf(items[i])) < monthPosition(monthOf(items[j]))
	})
}

// MonthSpan lists the months from start to end inclusive. A reversed span
// yields nil.
func MonthSpan(start, end time.Month) []time.Month {
	if start < time.January || end > time.December || start > end {
		return nil
	}
	months := make([]time.Month, 0, end-start+1)
	for m := start; m <= end; m++ {
		months = append(months, m)
	}
	return months
}

// MonthRange resolves two month names and lists the months between them.
func MonthRange(start, end string) ([]time.Month, error) {
	from, err := ParseMonth(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseMonth(end)
	if err != nil {
		return nil, err
	}
	return MonthSpan(from, to), nil
}
