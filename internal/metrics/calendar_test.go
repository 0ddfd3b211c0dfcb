package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthOfShiftsOneDayForward(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want time.Month
		year int
	}{
		{"mid month", day(2024, time.March, 10), time.March, 2024},
		{"last day rolls over", day(2024, time.January, 31), time.February, 2024},
		{"leap day stays", day(2024, time.February, 28), time.February, 2024},
		{"leap day rolls", day(2024, time.February, 29), time.March, 2024},
		{"new year's eve", day(2023, time.December, 31), time.January, 2024},
		{"non utc input", time.Date(2024, time.May, 30, 22, 0, 0, 0, time.FixedZone("PET", -5*3600)), time.June, 2024},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MonthOf(tc.at))
			assert.Equal(t, int(tc.want)-1, MonthIndex(tc.at))
			assert.Equal(t, tc.year, YearOf(tc.at))
		})
	}
}

func TestParseMonthIgnoresCaseAndAccents(t *testing.T) {
	for _, name := range []string{"Marzo", "MARZO", " márzo ", "marzo"} {
		m, err := ParseMonth(name)
		require.NoError(t, err, name)
		assert.Equal(t, time.March, m)
	}

	m, err := ParseMonth("Setiembre")
	require.NoError(t, err)
	assert.Equal(t, time.September, m)

	_, err = ParseMonth("Marzzo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMonthName))
}

func TestMonthNamesRoundTrip(t *testing.T) {
	for i, name := range MonthNames {
		m, err := ParseMonth(name)
		require.NoError(t, err)
		assert.Equal(t, time.Month(i+1), m)
		assert.Equal(t, name, MonthName(m))
	}
	assert.Equal(t, "", MonthName(13))
}

func TestSortByMonthIsChronologicalAndStable(t *testing.T) {
	type row struct {
		month string
		tag   int
	}
	rows := []row{{"Marzo", 1}, {"Enero", 2}, {"Marzo", 3}, {"Febrero", 4}, {"desconocido", 5}}
	SortByMonth(rows, func(r row) string { return r.month })
	assert.Equal(t, []row{{"Enero", 2}, {"Febrero", 4}, {"Marzo", 1}, {"Marzo", 3}, {"desconocido", 5}}, rows)
}

func TestMonthRange(t *testing.T) {
	months, err := MonthRange("Octubre", "Diciembre")
	require.NoError(t, err)
	assert.Equal(t, []time.Month{time.October, time.November, time.December}, months)

	months, err = MonthRange("Diciembre", "Enero")
	require.NoError(t, err)
	assert.Empty(t, months)

	_, err = MonthRange("Enero", "Nada")
	assert.ErrorIs(t, err, ErrInvalidMonthName)
}
